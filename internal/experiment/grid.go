package experiment

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// Grid returns round(perUnit*horizon)+1 evenly spaced times from 0 to horizon.
// A horizon of zero yields the single time 0.
func Grid(horizon float64, perUnit int) []float64 {
	n := int(math.Round(float64(perUnit)*horizon)) + 1
	if n < 2 {
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, horizon)
}

// Perturbations draws an n x dim block of N(0,1) deviates scaled by eps.
// All rows come from one source seeded once, filled row by row, so the
// draw for member i depends on the seed and on i but not on n.
func Perturbations(n, dim int, eps float64, seed int64) []dynamo.State {
	rng := rand.New(rand.NewSource(seed))
	out := make([]dynamo.State, n)
	for i := range out {
		row := make(dynamo.State, dim)
		for j := range row {
			row[j] = eps * rng.NormFloat64()
		}
		out[i] = row
	}
	return out
}
