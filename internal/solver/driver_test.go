package solver_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/laws"
	"github.com/san-kum/hydrosim/internal/solver"
)

const gamma = laws.GammaIdealMonatomic

func uniform(dimension int, rho, p float64, u ...float64) grid.InitialCondition {
	return grid.InitialConditionFunc(func(int, []int, int) grid.Seed {
		v := make([]float64, dimension)
		copy(v, u)
		return grid.Seed{Density: rho, Velocity: v, Pressure: p}
	})
}

// wavy has a sinusoidal density and a uniform velocity along every axis.
func wavy(dimension int, u float64) grid.InitialCondition {
	return grid.InitialConditionFunc(func(_ int, coords []int, n int) grid.Seed {
		rho := 1.0
		for _, x := range coords {
			rho += 0.2 * math.Sin(2*math.Pi*float64(x)/float64(n))
		}
		v := make([]float64, dimension)
		for d := range v {
			v[d] = u
		}
		return grid.Seed{Density: rho, Velocity: v, Pressure: 1}
	})
}

func totalMass(g *grid.Grid[float64, int64]) float64 {
	sum := 0.0
	for _, c := range g.Cells() {
		sum += c.Density()
	}
	return sum
}

type dumpRecord struct {
	counter int
	time    float64
}

type recorder struct {
	dumps []dumpRecord
	steps []int
	fail  error
}

func (r *recorder) Dump(counter int, t float64, _ grid.Field) error {
	if r.fail != nil {
		return r.fail
	}
	r.dumps = append(r.dumps, dumpRecord{counter, t})
	return nil
}

func (r *recorder) OnStep(step int, _, _ float64, _ grid.Field) {
	r.steps = append(r.steps, step)
}

type countMetric struct{ n int }

func (m *countMetric) Name() string                { return "observations" }
func (m *countMetric) Observe(grid.Field, float64) { m.n++ }
func (m *countMetric) Value() float64              { return float64(m.n) }
func (m *countMetric) Reset()                      { m.n = 0 }

var _ = Describe("Driver", func() {
	var cfg solver.Config

	BeforeEach(func() {
		cfg = solver.DefaultConfig()
	})

	newGrid := func(dimension, resolution int, ic grid.InitialCondition) *grid.Grid[float64, int64] {
		g, err := grid.New[float64, int64](dimension, resolution, gamma, ic)
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	Describe("construction", func() {
		DescribeTable("rejects invalid configuration",
			func(mutate func(*solver.Config)) {
				mutate(&cfg)
				_, err := solver.New(newGrid(2, 4, uniform(2, 1, 1)), cfg)
				Expect(err).To(MatchError(grid.ErrInvalidConfig))
			},
			Entry("zero max time", func(c *solver.Config) { c.MaxTime = 0 }),
			Entry("negative dump interval", func(c *solver.Config) { c.DumpInterval = -1 }),
			Entry("zero CFL buffer", func(c *solver.Config) { c.CFLBuffer = 0 }),
			Entry("negative minimum step", func(c *solver.Config) { c.MinDt = -1e-3 }),
			Entry("minimum step above dump cap", func(c *solver.Config) { c.MinDt = 1 }),
		)

		It("rejects a nil grid", func() {
			_, err := solver.New[float64, int64](nil, cfg)
			Expect(err).To(MatchError(grid.ErrInvalidConfig))
		})

		It("derives the minimum step from the CFL buffer", func() {
			d, err := solver.New(newGrid(2, 8, uniform(2, 1, 1)), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.MinDt()).To(BeNumerically("~", 0.5*(1.0/8)/100, 1e-15))
			Expect(d.MaxDt()).To(Equal(0.05))
		})
	})

	Describe("a uniform rest state", func() {
		It("is a fixed point of one step", func() {
			g := newGrid(2, 4, uniform(2, 1, 1))
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Step()).To(Succeed())
			Expect(d.Steps()).To(Equal(1))

			for _, c := range g.Cells() {
				Expect(c.Density()).To(Equal(1.0))
				Expect(c.Velocity()).To(Equal([]float64{0, 0}))
				Expect(c.Pressure()).To(BeNumerically("~", 1.0, 1e-12))
			}
		})
	})

	Describe("conservation", func() {
		It("keeps the total mass constant", func() {
			g := newGrid(2, 8, wavy(2, 0.3))
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			before := totalMass(g)
			for i := 0; i < 20; i++ {
				Expect(d.Step()).To(Succeed())
			}
			Expect(totalMass(g)).To(BeNumerically("~", before, 1e-10*before))
		})

		It("keeps committed pressure consistent with the equation of state", func() {
			g := newGrid(2, 8, wavy(2, 0.3))
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 5; i++ {
				Expect(d.Step()).To(Succeed())
				for _, c := range g.Cells() {
					Expect(c.Pressure()).To(Equal(grid.Pressure(g.Gamma(), c.Density(), c.Energy(), c.Velocity())))
				}
			}
		})
	})

	Describe("time step control", func() {
		It("starts from the CFL condition capped at half the dump interval", func() {
			g := newGrid(1, 10, uniform(1, 1, 1, 2))
			cfg.DumpInterval = 1
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			res, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.TimeSteps[0]).To(BeNumerically("~", 0.5*0.1/2, 1e-15))
		})

		It("keeps every step between the configured bounds", func() {
			g := newGrid(2, 8, wavy(2, 0.3))
			cfg.MaxTime = 0.2
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			res, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.TimeSteps).NotTo(BeEmpty())
			for i, dt := range res.TimeSteps {
				Expect(dt).To(BeNumerically("<=", d.MaxDt()))
				if i > 0 {
					Expect(dt).To(BeNumerically(">=", d.MinDt()))
				}
			}
		})

		It("applies the configured minimum step after the first step", func() {
			g := newGrid(1, 4, uniform(1, 1, 1, 1000))
			cfg.MinDt = 0.01
			cfg.Validate = false
			cfg.MaxTime = 0.05
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			res, _ := d.Run(context.Background())
			Expect(res.TimeSteps[0]).To(BeNumerically("<", 0.01))
			for _, dt := range res.TimeSteps[1:] {
				Expect(dt).To(BeNumerically(">=", 0.01))
			}
		})
	})

	Describe("the run loop", func() {
		It("dumps the initial state and every elapsed interval until done", func() {
			g := newGrid(2, 4, uniform(2, 1, 1))
			rec := &recorder{}
			metric := &countMetric{}
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())
			d.SetSnapshotter(rec)
			d.AddObserver(rec)
			d.AddMetric(metric)

			res, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Phase()).To(Equal(solver.Done))

			Expect(res.FinalTime).To(BeNumerically(">", cfg.MaxTime))
			Expect(res.FinalTime - res.TimeSteps[len(res.TimeSteps)-1]).To(BeNumerically("<=", cfg.MaxTime))
			Expect(res.StepsTaken).To(Equal(len(rec.steps)))
			Expect(res.Metrics).To(HaveKeyWithValue("observations", float64(res.StepsTaken+1)))

			Expect(rec.dumps).NotTo(BeEmpty())
			Expect(rec.dumps[0]).To(Equal(dumpRecord{0, 0}))
			for i, dump := range rec.dumps {
				Expect(dump.counter).To(Equal(i))
			}
			for i := 1; i < len(rec.dumps); i++ {
				Expect(rec.dumps[i].time - rec.dumps[i-1].time).To(BeNumerically(">", cfg.DumpInterval))
			}
			Expect(res.Dumps).To(Equal(len(rec.dumps)))

			Expect(d.Step()).To(Succeed())
			Expect(d.Steps()).To(Equal(res.StepsTaken))
		})

		It("stops on a non-positive pressure with the offending cell", func() {
			g := newGrid(1, 4, uniform(1, 1, -1))
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = d.Run(context.Background())
			Expect(err).To(MatchError(laws.ErrNonPositivePressure))

			var stepErr *solver.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(0))

			var cellErr *laws.CellError
			Expect(errors.As(err, &cellErr)).To(BeTrue())
			Expect(cellErr.Law).To(Equal("energy"))
			Expect(d.Phase()).NotTo(Equal(solver.Done))
		})

		It("surfaces snapshot failures", func() {
			d, err := solver.New(newGrid(1, 4, uniform(1, 1, 1)), cfg)
			Expect(err).NotTo(HaveOccurred())
			boom := errors.New("disk full")
			d.SetSnapshotter(&recorder{fail: boom})

			_, err = d.Run(context.Background())
			Expect(err).To(MatchError(boom))
		})

		It("honours a cancelled context between steps", func() {
			d, err := solver.New(newGrid(1, 4, uniform(1, 1, 1)), cfg)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := d.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(0))
		})
	})

	Describe("single precision", func() {
		It("runs a uniform state to completion", func() {
			g, err := grid.New[float32, int32](2, 4, gamma, uniform(2, 1, 1))
			Expect(err).NotTo(HaveOccurred())
			d, err := solver.New(g, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			for _, c := range g.Cells() {
				Expect(c.Density()).To(Equal(float32(1)))
			}
		})
	})
})
