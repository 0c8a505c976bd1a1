package assim_test

import (
	"context"
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lorenzlab/internal/assim"
	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/physics"
)

var _ = Describe("Benchmark", func() {
	It("has a valid setup for every model", func() {
		for _, model := range experiment.Models() {
			cfg, err := assim.Benchmark(model)
			Expect(err).NotTo(HaveOccurred())
			sys, x0, err := experiment.System(model, experiment.DefaultLorenz63Config(), experiment.DefaultLorenz96Config())
			Expect(err).NotTo(HaveOccurred())
			Expect(sys).NotTo(BeNil())
			Expect(cfg.Validate(len(x0))).To(Succeed(), model)
		}
		_, err := assim.Benchmark("rossler")
		Expect(err).To(HaveOccurred())
	})

	It("collects every validation error", func() {
		cfg, _ := assim.Benchmark(experiment.ModelLorenz63)
		cfg.Members = 1
		cfg.Method = "optimal"
		cfg.Observed = []int{0, 3}
		err := cfg.Validate(3)
		Expect(err).To(MatchError(ContainSubstring("members")))
		Expect(err).To(MatchError(ContainSubstring("optimal")))
		Expect(err).To(MatchError(ContainSubstring("component 3")))
	})
})

var _ = Describe("GenerateTwin", func() {
	var (
		ctx  context.Context
		sys  dynamo.System
		step integrators.Stepper
		cfg  assim.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		sys = physics.NewLorenz63(physics.DefaultLorenz63Params())
		step = integrators.NewRK4()
		cfg, _ = assim.Benchmark(experiment.ModelLorenz63)
		cfg.Horizon = 1
	})

	It("follows the model exactly without noise", func() {
		cfg.X0Var = 0
		x0 := dynamo.State{1, 2, 3}

		tw, err := assim.GenerateTwin(ctx, sys, step, x0, cfg, rand.New(rand.NewSource(1)))
		Expect(err).NotTo(HaveOccurred())
		Expect(tw.Times).To(HaveLen(101))
		Expect(tw.Truth[0]).To(Equal(x0))

		x := x0
		for k := 1; k <= 100; k++ {
			x = step.Step(sys, x, float64(k-1)*cfg.Dt, cfg.Dt)
		}
		Expect(tw.Truth[100]).To(Equal(x))
	})

	It("observes every ObsEvery steps", func() {
		cfg.Observed = []int{2}
		tw, err := assim.GenerateTwin(ctx, sys, step, physics.Lorenz63Proto(), cfg, rand.New(rand.NewSource(1)))
		Expect(err).NotTo(HaveOccurred())
		Expect(tw.ObsSteps).To(Equal([]int{25, 50, 75, 100}))
		Expect(tw.ObsTimes()).To(HaveLen(4))
		for _, y := range tw.Obs {
			Expect(y).To(HaveLen(1))
		}
	})

	It("is reproducible from the seed", func() {
		a, err := assim.GenerateTwin(ctx, sys, step, physics.Lorenz63Proto(), cfg, rand.New(rand.NewSource(7)))
		Expect(err).NotTo(HaveOccurred())
		b, _ := assim.GenerateTwin(ctx, sys, step, physics.Lorenz63Proto(), cfg, rand.New(rand.NewSource(7)))
		c, _ := assim.GenerateTwin(ctx, sys, step, physics.Lorenz63Proto(), cfg, rand.New(rand.NewSource(8)))
		Expect(a.Obs).To(Equal(b.Obs))
		Expect(a.Obs).NotTo(Equal(c.Obs))
	})

	It("stops on a cancelled context", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := assim.GenerateTwin(cancelled, sys, step, physics.Lorenz63Proto(), cfg, rand.New(rand.NewSource(1)))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("reports a diverging truth", func() {
		cfg.Dt, cfg.ObsEvery = 1, 1
		cfg.Horizon = 50
		_, err := assim.GenerateTwin(ctx, sys, integrators.NewEuler(), dynamo.State{1e100, 1e100, 1e100}, cfg, rand.New(rand.NewSource(1)))
		Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())
	})
})

var _ = Describe("Run", func() {
	ctx := context.Background()

	It("tracks Lorenz-63 from noisy observations", func() {
		cfg, _ := assim.Benchmark(experiment.ModelLorenz63)
		cfg.Horizon = 40
		sys := physics.NewLorenz63(physics.DefaultLorenz63Params())
		rng := rand.New(rand.NewSource(cfg.Seed))

		tw, err := assim.GenerateTwin(ctx, sys, integrators.NewRK4(), cfg.X0, cfg, rng)
		Expect(err).NotTo(HaveOccurred())
		stats, err := assim.Run(ctx, sys, integrators.NewRK4(), cfg.X0, cfg, tw, rng)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Times).To(HaveLen(160))

		sum := stats.Summary()
		Expect(sum.Cycles).To(BeNumerically("~", 144, 1))
		// observation error standard deviation is sqrt(2)
		Expect(sum.Analysis.RMSE).To(BeNumerically("<", 1))
		Expect(sum.Analysis.RMSE).To(BeNumerically("<", sum.Forecast.RMSE))
		Expect(sum.String()).To(ContainSubstring("Mean analysis RMSE"))
		Expect(sum.String()).To(ContainSubstring("Mean forecast RMSE"))
	})

	It("tracks Lorenz-96 with perturbed observations", func() {
		cfg, _ := assim.Benchmark(experiment.ModelLorenz96)
		cfg.Horizon, cfg.BurnIn = 10, 2
		cfg.Members, cfg.Infl = 20, 1.05
		cfg.Method = assim.MethodPertObs
		l96 := experiment.DefaultLorenz96Config()
		l96.Dim = 10
		sys, x0, err := experiment.System(experiment.ModelLorenz96, experiment.DefaultLorenz63Config(), l96)
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(cfg.Seed))

		tw, err := assim.GenerateTwin(ctx, sys, integrators.NewRK4(), x0, cfg, rng)
		Expect(err).NotTo(HaveOccurred())
		stats, err := assim.Run(ctx, sys, integrators.NewRK4(), x0, cfg, tw, rng)
		Expect(err).NotTo(HaveOccurred())

		sum := stats.Summary()
		Expect(sum.Analysis.RMSE).To(BeNumerically("<", 1))
		Expect(sum.Analysis.RMSV).To(BeNumerically(">", 0))
	})

	It("stops on a cancelled context", func() {
		cfg, _ := assim.Benchmark(experiment.ModelLorenz63)
		cfg.Horizon = 1
		sys := physics.NewLorenz63(physics.DefaultLorenz63Params())
		rng := rand.New(rand.NewSource(1))
		tw, err := assim.GenerateTwin(ctx, sys, integrators.NewRK4(), cfg.X0, cfg, rng)
		Expect(err).NotTo(HaveOccurred())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = assim.Run(cancelled, sys, integrators.NewRK4(), cfg.X0, cfg, tw, rng)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
