package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k|^2 / n for the first n/2 frequencies of data.
// Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	spec := fft.FFTReal(data)
	ps := make([]float64, n/2)

	for i := range ps {
		a := cmplx.Abs(spec[i])
		ps[i] = a * a / float64(n)
	}

	return ps
}

// DominantFrequency returns the frequency of the strongest non-zero bin of a
// spectrum computed from n samples spaced dt apart.
func DominantFrequency(ps []float64, n int, dt float64) float64 {
	if len(ps) < 2 || n < 2*len(ps) || dt <= 0 {
		return 0
	}

	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}

	return float64(maxIdx) / (float64(n) * dt)
}
