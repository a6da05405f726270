package solver

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/laws"
	"github.com/san-kum/hydrosim/internal/logging"
)

// Driver advances a grid through time. Each step sweeps every conservation
// law pass over the whole grid, commits all cells at once, then picks the
// next step size from the CFL condition.
type Driver[R grid.Real, C grid.Coord] struct {
	grid        *grid.Grid[R, C]
	passes      []laws.Pass[R, C]
	cfg         Config
	minDt       float64
	maxDt       float64
	logger      *slog.Logger
	snapshotter Snapshotter
	metrics     []Metric
	observers   []Observer
	neighbors   []*grid.Cell[R, C]

	started   bool
	phase     Phase
	time      float64
	dt        float64
	sinceDump float64
	steps     int
	dumps     int
	timeSteps []float64
}

func New[R grid.Real, C grid.Coord](g *grid.Grid[R, C], cfg Config) (*Driver[R, C], error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", grid.ErrInvalidConfig)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	dx := float64(g.Spacing())
	minDt := cfg.MinDt
	if minDt == 0 {
		minDt = cfg.CFLBuffer * dx / 100
	}
	maxDt := cfg.DumpInterval / 2
	if minDt > maxDt {
		return nil, fmt.Errorf("%w: minimum step %g exceeds half the dump interval %g", grid.ErrInvalidConfig, minDt, maxDt)
	}

	return &Driver[R, C]{
		grid:      g,
		passes:    laws.Passes[R, C](g.Dimension(), g.Gamma(), cfg.Validate),
		cfg:       cfg,
		minDt:     minDt,
		maxDt:     maxDt,
		logger:    logging.Discard(),
		neighbors: make([]*grid.Cell[R, C], 2*g.Dimension()),
	}, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.MaxTime > 0) {
		return fmt.Errorf("%w: max time must be positive, got %g", grid.ErrInvalidConfig, cfg.MaxTime)
	}
	if !(cfg.DumpInterval > 0) {
		return fmt.Errorf("%w: dump interval must be positive, got %g", grid.ErrInvalidConfig, cfg.DumpInterval)
	}
	if !(cfg.CFLBuffer > 0) {
		return fmt.Errorf("%w: CFL buffer must be positive, got %g", grid.ErrInvalidConfig, cfg.CFLBuffer)
	}
	if cfg.MinDt < 0 {
		return fmt.Errorf("%w: minimum step must not be negative, got %g", grid.ErrInvalidConfig, cfg.MinDt)
	}
	return nil
}

func (d *Driver[R, C]) SetLogger(l *slog.Logger) {
	if l != nil {
		d.logger = l
	}
}

func (d *Driver[R, C]) SetSnapshotter(s Snapshotter) { d.snapshotter = s }
func (d *Driver[R, C]) AddMetric(m Metric)           { d.metrics = append(d.metrics, m) }
func (d *Driver[R, C]) AddObserver(o Observer)       { d.observers = append(d.observers, o) }

func (d *Driver[R, C]) Grid() *grid.Grid[R, C] { return d.grid }
func (d *Driver[R, C]) Field() grid.Field      { return d.grid }
func (d *Driver[R, C]) Phase() Phase           { return d.phase }
func (d *Driver[R, C]) Time() float64          { return d.time }
func (d *Driver[R, C]) Dt() float64            { return d.dt }
func (d *Driver[R, C]) Steps() int             { return d.steps }
func (d *Driver[R, C]) Dumps() int             { return d.dumps }
func (d *Driver[R, C]) MinDt() float64         { return d.minDt }
func (d *Driver[R, C]) MaxDt() float64         { return d.maxDt }

// TimeStep is CFLBuffer·dx/vmax capped at half the dump interval. Steps after
// the first are also floored at the minimum step.
func (d *Driver[R, C]) TimeStep(first bool) float64 {
	dt := d.cfg.CFLBuffer * float64(d.grid.Spacing()) / float64(d.grid.MaxVelocity())
	dt = math.Min(dt, d.maxDt)
	if !first {
		dt = math.Max(dt, d.minDt)
	}
	return dt
}

func (d *Driver[R, C]) start() error {
	d.started = true
	d.phase = Stepping
	d.dt = d.TimeStep(true)

	for _, m := range d.metrics {
		m.Reset()
		m.Observe(d.grid, d.time)
	}

	d.logger.Info("starting run",
		"dimension", d.grid.Dimension(),
		"resolution", d.grid.Resolution(),
		"cells", d.grid.Len(),
		"dt", d.dt,
		"max_time", d.cfg.MaxTime)

	return d.dump()
}

func (d *Driver[R, C]) dump() error {
	if d.snapshotter == nil {
		return nil
	}
	if err := d.snapshotter.Dump(d.dumps, d.time, d.grid); err != nil {
		return fmt.Errorf("dump %d: %w", d.dumps, err)
	}
	d.logger.Info("dumped snapshot", "counter", d.dumps, "time", d.time)
	d.dumps++
	return nil
}

// Step advances the grid by one time step. It is a no-op once the run is done.
func (d *Driver[R, C]) Step() error {
	if !d.started {
		if err := d.start(); err != nil {
			return err
		}
	}
	if d.phase == Done {
		return nil
	}

	if err := d.sweep(); err != nil {
		d.logger.Error("step failed", "step", d.steps, "time", d.time, "error", err)
		return &StepError{Step: d.steps, Time: d.time, Wrapped: err}
	}
	d.grid.CommitAll()

	dt := d.dt
	d.time += dt
	d.sinceDump += dt
	d.steps++
	d.timeSteps = append(d.timeSteps, dt)
	d.logger.Debug("step", "step", d.steps, "time", d.time, "dt", dt)

	for _, m := range d.metrics {
		m.Observe(d.grid, d.time)
	}
	for _, o := range d.observers {
		o.OnStep(d.steps, d.time, dt, d.grid)
	}

	if d.sinceDump > d.cfg.DumpInterval {
		d.phase = Dumping
		if err := d.dump(); err != nil {
			return &StepError{Step: d.steps, Time: d.time, Wrapped: err}
		}
		d.sinceDump = 0
		d.phase = Stepping
	}

	if d.time > d.cfg.MaxTime {
		d.phase = Done
		d.logger.Info("run complete", "steps", d.steps, "time", d.time, "dumps", d.dumps)
		return nil
	}

	d.dt = d.TimeStep(false)
	return nil
}

func (d *Driver[R, C]) sweep() error {
	factor := R(d.dt / (2 * float64(d.grid.Spacing())))
	for _, pass := range d.passes {
		for _, c := range d.grid.Cells() {
			if err := pass.Apply(c, d.grid.NeighborsInto(d.neighbors, c), factor); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run steps until the simulated time passes MaxTime. The context is checked
// between steps only.
func (d *Driver[R, C]) Run(ctx context.Context) (*Result, error) {
	var err error
	for d.phase != Done {
		select {
		case <-ctx.Done():
			return d.result(), ctx.Err()
		default:
		}

		if err = d.Step(); err != nil {
			break
		}
	}
	return d.result(), err
}

func (d *Driver[R, C]) result() *Result {
	r := &Result{
		StepsTaken: d.steps,
		FinalTime:  d.time,
		Dumps:      d.dumps,
		TimeSteps:  append([]float64(nil), d.timeSteps...),
		Metrics:    make(map[string]float64, len(d.metrics)),
	}
	for _, m := range d.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
	return r
}
