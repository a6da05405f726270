package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/grid"
)

type Energy struct {
	name  string
	value float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f grid.Field, t float64) {
	e.value = TotalEnergy(f)
}

func (e *Energy) Value() float64 { return e.value }

func (e *Energy) Reset() { e.value = 0 }

// PeakSpeedMetric tracks the fastest speed seen over the whole run.
type PeakSpeedMetric struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeedMetric {
	return &PeakSpeedMetric{name: "peak_speed"}
}

func (p *PeakSpeedMetric) Name() string { return p.name }

func (p *PeakSpeedMetric) Observe(f grid.Field, t float64) {
	p.peak = math.Max(p.peak, PeakSpeed(f))
}

func (p *PeakSpeedMetric) Value() float64 { return p.peak }

func (p *PeakSpeedMetric) Reset() { p.peak = 0 }
