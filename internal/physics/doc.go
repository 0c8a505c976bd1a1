// Package physics provides the chaotic models used in the course notebooks.
//
// Each model implements [dynamo.System] and [dynamo.Configurable]:
//
//   - [Lorenz63]: three-variable convection model, the butterfly attractor
//   - [Lorenz96]: m-variable circulant model driven by a constant forcing
//
// The derivatives are also exposed as pure functions, [Lorenz63Derivative]
// and [Lorenz96Derivative], which never fail for finite input. Extreme
// parameters can still drive them to non-finite output; that is a property
// of the equations and is left to the caller.
//
//	sys := physics.NewLorenz96(40, 8)
//	dx := sys.Derive(x, 0)
package physics
