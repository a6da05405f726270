package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/initial"
	"github.com/san-kum/hydrosim/internal/solver"
	"github.com/san-kum/hydrosim/internal/tui"
)

// simulation hides the precision parameters of a solver.Driver from the
// commands.
type simulation interface {
	tui.Stepper
	Run(ctx context.Context) (*solver.Result, error)
	SetLogger(l *slog.Logger)
	SetSnapshotter(s solver.Snapshotter)
	AddMetric(m solver.Metric)
	AddObserver(o solver.Observer)
	MinDt() float64
	MaxDt() float64
}

func newSimulation(cfg *config.Config) (simulation, error) {
	ic, err := initial.ByName(cfg.InitialCondition, cfg.Dimension, cfg.InitialParams())
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.DoublePrecision() && cfg.CoordBits == 32:
		return build[float64, int32](cfg, ic)
	case cfg.DoublePrecision():
		return build[float64, int64](cfg, ic)
	case cfg.CoordBits == 32:
		return build[float32, int32](cfg, ic)
	default:
		return build[float32, int64](cfg, ic)
	}
}

func build[R grid.Real, C grid.Coord](cfg *config.Config, ic grid.InitialCondition) (simulation, error) {
	g, err := grid.New[R, C](cfg.Dimension, cfg.Resolution, cfg.Gamma, ic)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}
	d, err := solver.New(g, cfg.SolverConfig())
	if err != nil {
		return nil, err
	}
	return d, nil
}
