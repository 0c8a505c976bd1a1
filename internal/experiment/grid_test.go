package experiment_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lorenzlab/internal/experiment"
)

var _ = Describe("Grid", func() {
	It("returns a single zero sample for a zero horizon", func() {
		Expect(experiment.Grid(0, 100)).To(Equal([]float64{0}))
	})

	DescribeTable("sample counts",
		func(horizon float64, perUnit, want int) {
			Expect(experiment.Grid(horizon, perUnit)).To(HaveLen(want))
		},
		Entry("lorenz63, T=1", 1.0, 100, 101),
		Entry("lorenz63, T=0.3", 0.3, 100, 31),
		Entry("lorenz96, T=5", 5.0, 40, 201),
		Entry("lorenz96, T=0.025", 0.025, 40, 2),
	)

	It("is evenly spaced and ends exactly at the horizon", func() {
		grid := experiment.Grid(2.5, 40)
		Expect(grid[0]).To(Equal(0.0))
		Expect(grid[len(grid)-1]).To(Equal(2.5))
		for i := 1; i < len(grid); i++ {
			Expect(grid[i] - grid[i-1]).To(BeNumerically("~", 2.5/100, 1e-12))
		}
	})
})

var _ = Describe("Perturbations", func() {
	It("is reproducible for a fixed seed", func() {
		a := experiment.Perturbations(5, 3, 0.1, 42)
		b := experiment.Perturbations(5, 3, 0.1, 42)
		Expect(a).To(Equal(b))
	})

	It("draws one shared sequence rather than re-seeding per member", func() {
		a := experiment.Perturbations(4, 3, 1, 7)
		Expect(a[0]).NotTo(Equal(a[1]))

		longer := experiment.Perturbations(6, 3, 1, 7)
		Expect(longer[:4]).To(Equal(a))
	})

	It("scales standard normals by eps", func() {
		rows := experiment.Perturbations(4000, 3, 0.5, 3)
		flat := make([]float64, 0, len(rows)*3)
		for _, r := range rows {
			flat = append(flat, r...)
		}
		mean, std := stat.MeanStdDev(flat, nil)
		Expect(math.Abs(mean)).To(BeNumerically("<", 0.05))
		Expect(std).To(BeNumerically("~", 0.5, 0.05))
	})

	It("returns zeros for eps = 0 and nothing for n = 0", func() {
		for _, r := range experiment.Perturbations(3, 3, 0, 1) {
			for _, v := range r {
				Expect(v).To(BeZero())
			}
		}
		Expect(experiment.Perturbations(0, 3, 1, 1)).To(BeEmpty())
	})
})
