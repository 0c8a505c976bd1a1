package experiment_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/integrators"
)

var _ = Describe("SampleLorenz96", func() {
	var (
		ctx    context.Context
		solver integrators.Solver
		cfg    experiment.Lorenz96Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		solver = integrators.NewAdaptive()
		cfg = experiment.DefaultLorenz96Config()
	})

	It("returns the kicked resting state when T = 0", func() {
		cfg.Dim, cfg.Forcing, cfg.Eps, cfg.Horizon = 40, 8, 0.01, 0

		tr, err := experiment.SampleLorenz96(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(1))
		Expect(tr.Dim()).To(Equal(40))
		Expect(tr.States[0][0]).To(Equal(0.01))
		for i := 1; i < 40; i++ {
			Expect(tr.States[0][i]).To(BeZero())
		}
	})

	It("samples 40 times per unit of model time", func() {
		cfg.Horizon = 2

		tr, err := experiment.SampleLorenz96(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(81))
		Expect(tr.Times[80]).To(Equal(2.0))
		for _, x := range tr.States {
			Expect(x).To(HaveLen(cfg.Dim))
		}
	})

	It("relaxes to the uniform fixed point x_i = F without a kick", func() {
		cfg.Dim, cfg.Eps, cfg.Forcing, cfg.Horizon = 8, 0, 1, 20

		tr, err := experiment.SampleLorenz96(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, v := range tr.Final() {
			Expect(v).To(BeNumerically("~", 1, 1e-3))
		}
	})

	It("honours the configured dimension", func() {
		cfg.Dim, cfg.Horizon = 5, 0.5

		tr, err := experiment.SampleLorenz96(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Dim()).To(Equal(5))
	})

	It("rejects a non-positive dimension in Validate", func() {
		cfg.Dim = 0
		Expect(cfg.Validate()).NotTo(Succeed())
		Expect(experiment.DefaultLorenz96Config().Validate()).To(Succeed())
	})
})

var _ = Describe("System", func() {
	It("builds both models", func() {
		l63, l96 := experiment.DefaultLorenz63Config(), experiment.DefaultLorenz96Config()

		sys, x0, err := experiment.System(experiment.ModelLorenz63, l63, l96)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.Derive(dynamo.State{0, 0, 0}, 0)).To(Equal(dynamo.State{0, 0, 0}))
		Expect(x0).To(Equal(dynamo.State{-6.1, 1.2, 32.5}))

		_, x0, err = experiment.System(experiment.ModelLorenz96, l63, l96)
		Expect(err).NotTo(HaveOccurred())
		Expect(x0).To(HaveLen(40))

		_, _, err = experiment.System("rossler", l63, l96)
		Expect(err).To(HaveOccurred())
	})
})
