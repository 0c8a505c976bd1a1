package experiment_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/physics"
)

type failingSolver struct{ after int }

func (f *failingSolver) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid []float64) ([]dynamo.State, error) {
	return nil, &dynamo.IntegrationError{Step: f.after, Wrapped: dynamo.ErrUnstable}
}

var _ = Describe("SampleLorenz63", func() {
	var (
		ctx    context.Context
		solver integrators.Solver
		cfg    experiment.Lorenz63Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		solver = integrators.NewAdaptive()
		cfg = experiment.DefaultLorenz63Config()
	})

	It("reproduces the classic single-member run", func() {
		cfg.Members, cfg.Eps, cfg.Horizon = 1, 0, 1

		ens, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ens.Size()).To(Equal(1))
		Expect(ens.Samples()).To(Equal(101))
		Expect(ens.Members[0].States[0]).To(Equal(dynamo.State{-6.1, 1.2, 32.5}))
		Expect(ens.Times()[100]).To(Equal(1.0))

		for _, x := range ens.Members[0].States {
			Expect(x).To(HaveLen(3))
			Expect(x.IsValid()).To(BeTrue())
		}
	})

	It("returns one sample equal to the perturbed initial state when T = 0", func() {
		cfg.Members, cfg.Horizon = 4, 0

		ens, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ens.Samples()).To(Equal(1))
		for i, m := range ens.Members {
			Expect(m.States).To(HaveLen(1))
			Expect(m.States[0]).To(Equal(ens.Initial[i]))
		}
	})

	It("returns an empty ensemble for N = 0", func() {
		cfg.Members = 0

		ens, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ens.Size()).To(Equal(0))
		Expect(ens.Initial).To(BeEmpty())
	})

	It("starts every member at the proto state when eps = 0", func() {
		cfg.Members, cfg.Eps, cfg.Horizon = 5, 0, 0.1

		ens, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, x0 := range ens.Initial {
			Expect(x0).To(Equal(physics.Lorenz63Proto()))
		}
	})

	It("perturbs members independently with the seeded draw", func() {
		cfg.Members, cfg.Eps, cfg.Horizon = 3, 0.1, 0

		ens, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())

		pert := experiment.Perturbations(3, 3, 0.1, cfg.Seed)
		proto := physics.Lorenz63Proto()
		for i, x0 := range ens.Initial {
			Expect(x0).To(Equal(proto.Add(pert[i])))
		}
		Expect(ens.Initial[0]).NotTo(Equal(ens.Initial[1]))
	})

	It("uses the default proto when none is configured", func() {
		cfg.Members, cfg.Eps, cfg.Horizon, cfg.Proto = 1, 0, 0, nil

		ens, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ens.Initial[0]).To(Equal(physics.Lorenz63Proto()))
	})

	It("gives the same ensemble with parallel workers", func() {
		cfg.Members, cfg.Horizon = 8, 0.5

		seq, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())

		cfg.Workers = 4
		par, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(par).To(Equal(seq))
	})

	It("stays on the attractor for the fixed-step solver too", func() {
		cfg.Members, cfg.Horizon = 2, 1
		rk4, err := integrators.New("rk4")
		Expect(err).NotTo(HaveOccurred())

		fixed, err := experiment.SampleLorenz63(ctx, rk4, cfg)
		Expect(err).NotTo(HaveOccurred())
		adaptive, err := experiment.SampleLorenz63(ctx, solver, cfg)
		Expect(err).NotTo(HaveOccurred())

		for k := range fixed.Members[0].States {
			for j := 0; j < 3; j++ {
				Expect(fixed.Members[0].States[k][j]).To(BeNumerically("~", adaptive.Members[0].States[k][j], 5e-2))
			}
		}
	})

	It("propagates solver failures with the member index", func() {
		cfg.Members = 3

		_, err := experiment.SampleLorenz63(ctx, &failingSolver{}, cfg)
		Expect(err).To(MatchError(ContainSubstring("member 0")))
		Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())

		cfg.Workers = 2
		_, err = experiment.SampleLorenz63(ctx, &failingSolver{}, cfg)
		Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())
	})
})

var _ = Describe("Lorenz63Config", func() {
	It("accepts the defaults", func() {
		Expect(experiment.DefaultLorenz63Config().Validate()).To(Succeed())
	})

	It("rejects out-of-range inputs", func() {
		cfg := experiment.DefaultLorenz63Config()
		cfg.Members, cfg.Eps, cfg.Horizon = -1, -0.5, -2
		cfg.Proto = dynamo.State{1, 2}

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("members"))
		Expect(err.Error()).To(ContainSubstring("eps"))
		Expect(err.Error()).To(ContainSubstring("horizon"))
		Expect(err.Error()).To(ContainSubstring("proto"))
	})
})
