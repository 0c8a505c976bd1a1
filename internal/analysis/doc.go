// Package analysis provides the diagnostics a data-assimilation course looks
// at after sampling:
//
//   - [EnsembleMean], [EnsembleSpread], [Covariance]: ensemble statistics
//   - [NewHistogram]: distribution of a coordinate across members or time
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum]: power spectrum of a sampled coordinate
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(sys, integrators.NewRK4(), x0, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // nearby states separate exponentially
//	}
package analysis
