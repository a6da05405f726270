package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/grid"
)

type Mass struct {
	name  string
	value float64
}

func NewMass() *Mass {
	return &Mass{name: "mass"}
}

func (m *Mass) Name() string { return m.name }

func (m *Mass) Observe(f grid.Field, t float64) {
	m.value = TotalMass(f)
}

func (m *Mass) Value() float64 { return m.value }

func (m *Mass) Reset() { m.value = 0 }

// MassDrift is the largest relative deviation of the total mass from its
// first observed value.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(f grid.Field, t float64) {
	mass := TotalMass(f)
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++

	if m.initial != 0 {
		drift := math.Abs(mass-m.initial) / math.Abs(m.initial)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
