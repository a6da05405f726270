package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/grid"
)

// Stability is the fraction of observations in which every cell kept its
// pressure above the threshold. It drops below one well before the
// integrator's own validation gives up.
type Stability struct {
	name        string
	threshold   float64
	violations  int
	samples     int
	minPressure float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:        "stability",
		threshold:   threshold,
		minPressure: math.Inf(1),
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f grid.Field, t float64) {
	s.samples++
	violated := false
	for i := 0; i < f.Len(); i++ {
		p := f.Sample(i).Pressure
		s.minPressure = math.Min(s.minPressure, p)
		if !(p > s.threshold) {
			violated = true
		}
	}
	if violated {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// MinPressure is the lowest pressure observed since the last Reset.
func (s *Stability) MinPressure() float64 {
	return s.minPressure
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.minPressure = math.Inf(1)
}
