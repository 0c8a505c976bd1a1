package assim_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lorenzlab/internal/assim"
)

func columnMean(E *mat.Dense, j int) float64 {
	n, _ := E.Dims()
	return mat.Sum(E.Slice(0, n, j, j+1)) / float64(n)
}

var _ = Describe("EnKF", func() {
	// Scalar case: mean 1.5, variance 5/3, observation 5 with variance 1,
	// so the gain is 0.625.
	scalar := func() *mat.Dense { return mat.NewDense(4, 1, []float64{0, 1, 2, 3}) }

	It("matches the scalar Kalman update with the square root method", func() {
		E := scalar()
		Expect(assim.NewEnKF(assim.MethodSqrt, nil).Analyse(E, []float64{5}, []int{0}, 1)).To(Succeed())

		Expect(columnMean(E, 0)).To(BeNumerically("~", 3.6875, 1e-12))
		Expect(assim.RMSV(E)).To(BeNumerically("~", math.Sqrt(0.625), 1e-12))
	})

	It("matches the scalar Kalman mean with perturbed observations", func() {
		E := scalar()
		f := assim.NewEnKF(assim.MethodPertObs, rand.New(rand.NewSource(3)))
		Expect(f.Analyse(E, []float64{5}, []int{0}, 1)).To(Succeed())

		Expect(columnMean(E, 0)).To(BeNumerically("~", 3.6875, 1e-12))
	})

	It("gives both methods the same mean under partial observation", func() {
		rng := rand.New(rand.NewSource(11))
		data := make([]float64, 6*3)
		for i := range data {
			data[i] = rng.NormFloat64() * float64(1+i%3)
		}
		sq := mat.NewDense(6, 3, append([]float64(nil), data...))
		po := mat.NewDense(6, 3, append([]float64(nil), data...))
		y := []float64{0.5, -1}
		idx := []int{0, 2}

		Expect(assim.NewEnKF(assim.MethodSqrt, nil).Analyse(sq, y, idx, 0.5)).To(Succeed())
		Expect(assim.NewEnKF(assim.MethodPertObs, rng).Analyse(po, y, idx, 0.5)).To(Succeed())

		for j := 0; j < 3; j++ {
			Expect(columnMean(sq, j)).To(BeNumerically("~", columnMean(po, j), 1e-10))
		}
	})

	It("shrinks the spread when observations are precise", func() {
		E := scalar()
		before := assim.RMSV(E)
		Expect(assim.NewEnKF(assim.MethodSqrt, nil).Analyse(E, []float64{1.5}, []int{0}, 1e-4)).To(Succeed())
		Expect(assim.RMSV(E)).To(BeNumerically("<", before/10))
		Expect(columnMean(E, 0)).To(BeNumerically("~", 1.5, 1e-9))
	})

	It("rejects mismatched observations", func() {
		E := scalar()
		Expect(assim.NewEnKF(assim.MethodSqrt, nil).Analyse(E, []float64{1, 2}, []int{0}, 1)).NotTo(Succeed())
		Expect(assim.NewEnKF(assim.MethodSqrt, nil).Analyse(mat.NewDense(1, 1, []float64{1}), []float64{1}, []int{0}, 1)).NotTo(Succeed())
	})
})

var _ = Describe("Inflate", func() {
	It("scales anomalies about a fixed mean", func() {
		E := mat.NewDense(2, 2, []float64{1, 1, 3, 3})
		assim.Inflate(E, 2)
		Expect(mat.Equal(E, mat.NewDense(2, 2, []float64{0, 0, 4, 4}))).To(BeTrue())
	})
})

var _ = Describe("scores", func() {
	It("computes RMSE of the mean and RMSV", func() {
		E := mat.NewDense(2, 2, []float64{1, 1, 3, 3})
		Expect(assim.RMSE(E, []float64{0, 0})).To(BeNumerically("~", 2, 1e-12))
		Expect(assim.RMSV(E)).To(BeNumerically("~", math.Sqrt2, 1e-12))
	})

	It("reports a confidence for the mean of a series", func() {
		mean, conf := assim.MeanWithConf([]float64{2, 2, 2})
		Expect(mean).To(Equal(2.0))
		Expect(conf).To(BeZero())

		// alternating values are anti-correlated, so no widening applies
		xs := []float64{1, -1, 1, -1, 1, -1, 1, -1}
		mean, conf = assim.MeanWithConf(xs)
		Expect(mean).To(BeNumerically("~", 0, 1e-12))
		Expect(conf).To(BeNumerically("~", math.Sqrt(1.0/8), 1e-12))

		_, conf = assim.MeanWithConf([]float64{4})
		Expect(math.IsNaN(conf)).To(BeTrue())
	})
})
