package assim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// RMSE is the root mean square difference between the ensemble mean and
// the truth.
func RMSE(E *mat.Dense, truth dynamo.State) float64 {
	mu := mean(E)
	return floats.Distance(mu, truth, 2) / math.Sqrt(float64(len(mu)))
}

// RMSV is the root of the mean ensemble variance over components.
func RMSV(E *mat.Dense) float64 {
	n, m := E.Dims()
	col := make([]float64, n)
	sum := 0.0
	for j := 0; j < m; j++ {
		mat.Col(col, j, E)
		sum += stat.Variance(col, nil)
	}
	return math.Sqrt(sum / float64(m))
}

// MeanWithConf returns the mean of xs and the half-width of a one-sigma
// confidence interval for it. The standard error is widened by the lag-one
// autocorrelation of the series, clipped to [0, 0.99].
func MeanWithConf(xs []float64) (mean, conf float64) {
	n := len(xs)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	mean = stat.Mean(xs, nil)
	if n == 1 {
		return mean, math.NaN()
	}
	v := stat.PopVariance(xs, nil)
	if v == 0 {
		return mean, 0
	}

	a := stat.Correlation(xs[:n-1], xs[1:], nil)
	if math.IsNaN(a) || a < 0 {
		a = 0
	}
	a = math.Min(a, 0.99)
	return mean, math.Sqrt(v / float64(n) * (1 + a) / (1 - a))
}

// Score is the time-averaged error of one phase of the cycle.
type Score struct {
	RMSE float64
	Conf float64
	RMSV float64
}

type Summary struct {
	Cycles   int
	Analysis Score
	Forecast Score
}

func score(rmse, rmsv []float64) Score {
	var s Score
	s.RMSE, s.Conf = MeanWithConf(rmse)
	s.RMSV = math.NaN()
	if len(rmsv) > 0 {
		s.RMSV = stat.Mean(rmsv, nil)
	}
	return s
}

// Summary averages the series over the observation times after BurnIn.
func (s *Stats) Summary() Summary {
	from := len(s.Times)
	for i, t := range s.Times {
		if t > s.BurnIn {
			from = i
			break
		}
	}
	return Summary{
		Cycles:   len(s.Times) - from,
		Analysis: score(s.AnalysisRMSE[from:], s.AnalysisRMSV[from:]),
		Forecast: score(s.ForecastRMSE[from:], s.ForecastRMSV[from:]),
	}
}

func (sum Summary) String() string {
	return fmt.Sprintf("Mean analysis RMSE: %8.5f +/- %-5.2g,    RMSV: %8.5f\n"+
		"Mean forecast RMSE: %8.5f +/- %-5.2g,    RMSV: %8.5f\n",
		sum.Analysis.RMSE, sum.Analysis.Conf, sum.Analysis.RMSV,
		sum.Forecast.RMSE, sum.Forecast.Conf, sum.Forecast.RMSV)
}
