// Package integrators implements the ODE integration collaborator: single-step
// schemes ([Euler], [RK4], [RK45]) and grid solvers that report the state at
// every requested time ([Fixed], [Adaptive]).
//
// All steppers and solvers are stateless between calls and safe for
// concurrent use, so one solver can serve every member of an ensemble.
package integrators
