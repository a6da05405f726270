package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/hydrosim/internal/grid"
)

// Exporter publishes per-step run state as Prometheus metrics.
type Exporter struct {
	steps     prometheus.Counter
	simTime   prometheus.Gauge
	timeStep  prometheus.Gauge
	mass      prometheus.Gauge
	energy    prometheus.Gauge
	peakSpeed prometheus.Gauge
	dtHist    prometheus.Histogram
}

func NewExporter(reg prometheus.Registerer) *Exporter {
	f := promauto.With(reg)
	return &Exporter{
		steps: f.NewCounter(prometheus.CounterOpts{
			Name: "hydrosim_steps_total",
			Help: "Integration steps completed",
		}),
		simTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "hydrosim_simulated_time",
			Help: "Simulated time reached",
		}),
		timeStep: f.NewGauge(prometheus.GaugeOpts{
			Name: "hydrosim_time_step",
			Help: "Size of the last time step",
		}),
		mass: f.NewGauge(prometheus.GaugeOpts{
			Name: "hydrosim_total_mass",
			Help: "Density integrated over the box",
		}),
		energy: f.NewGauge(prometheus.GaugeOpts{
			Name: "hydrosim_total_energy",
			Help: "Total energy integrated over the box",
		}),
		peakSpeed: f.NewGauge(prometheus.GaugeOpts{
			Name: "hydrosim_peak_speed",
			Help: "Largest flow speed on the grid",
		}),
		dtHist: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hydrosim_time_step_distribution",
			Help:    "Distribution of chosen time steps",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

func (e *Exporter) OnStep(step int, t, dt float64, f grid.Field) {
	s := Summarize(f)
	e.steps.Inc()
	e.simTime.Set(t)
	e.timeStep.Set(dt)
	e.dtHist.Observe(dt)
	e.mass.Set(s.Mass)
	e.energy.Set(s.Energy)
	e.peakSpeed.Set(s.PeakSpeed)
}
