package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

var ErrTooFewMembers = errors.New("analysis: need at least two ensemble members")

// Column returns coordinate j of every state.
func Column(states []dynamo.State, j int) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		out[i] = s[j]
	}
	return out
}

// EnsembleMean returns the member-average state at every time sample.
func EnsembleMean(e *dynamo.Ensemble) []dynamo.State {
	samples := e.Samples()
	out := make([]dynamo.State, samples)
	for k := 0; k < samples; k++ {
		at := e.At(k)
		mean := make(dynamo.State, len(at[0]))
		for j := range mean {
			mean[j] = stat.Mean(Column(at, j), nil)
		}
		out[k] = mean
	}
	return out
}

// EnsembleSpread returns sqrt of the coordinate-averaged sample variance at
// every time sample. Ensembles with fewer than two members have zero spread.
func EnsembleSpread(e *dynamo.Ensemble) []float64 {
	samples := e.Samples()
	out := make([]float64, samples)
	if e.Size() < 2 {
		return out
	}
	for k := 0; k < samples; k++ {
		at := e.At(k)
		dim := len(at[0])
		total := 0.0
		for j := 0; j < dim; j++ {
			total += stat.Variance(Column(at, j), nil)
		}
		out[k] = math.Sqrt(total / float64(dim))
	}
	return out
}

// Covariance returns the sample covariance of the members at time sample k.
func Covariance(e *dynamo.Ensemble, k int) (*mat.SymDense, error) {
	if e.Size() < 2 {
		return nil, ErrTooFewMembers
	}
	if k < 0 || k >= e.Samples() {
		return nil, fmt.Errorf("analysis: sample %d out of range [0, %d)", k, e.Samples())
	}

	at := e.At(k)
	dim := len(at[0])
	data := make([]float64, 0, len(at)*dim)
	for _, s := range at {
		data = append(data, s...)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, mat.NewDense(len(at), dim, data), nil)
	return &cov, nil
}
