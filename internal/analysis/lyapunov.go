package analysis

import (
	"math"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/integrators"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two trajectories separated by perturbation along x[0]
// 2. After every step, accumulate ln(|δx|/δ0)
// 3. Pull the companion back to distance δ0 along the current separation
// 4. λ ≈ Σ ln(|δx|/δ0) / (steps * dt)
func LyapunovExponent(
	sys dynamo.System,
	step integrators.Stepper,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 || perturbation <= 0 || dt <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation
	d0 := perturbation

	t := 0.0
	sumLog := 0.0
	count := 0

	for t < duration {
		x = step.Step(sys, x, t, dt)
		xp = step.Step(sys, xp, t, dt)
		t += dt

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}

		sumLog += math.Log(sep / d0)
		count++

		// Renormalize to prevent overflow and stay in the linear regime.
		scale := d0 / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
	}

	if count == 0 {
		return 0
	}

	return sumLog / (float64(count) * dt)
}
