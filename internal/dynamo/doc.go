// Package dynamo provides the core primitives shared by the chaotic
// system models and their solvers:
//
//   - [State]: vector representing system state
//   - [System]: interface for autonomous or time-dependent ODEs (dX/dt = f(X, t))
//   - [Trajectory]: states sampled on a time grid
//   - [Ensemble]: perturbed initial conditions and one trajectory each
//
// # Example
//
//	sys := physics.NewLorenz63(physics.DefaultLorenz63Params())
//	states, err := integrators.NewAdaptive().Solve(ctx, sys, x0, grid)
//
// Trajectories and ensembles are produced once and treated as read-only
// afterwards; none of the types here carry locks.
package dynamo
