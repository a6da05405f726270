package metrics

import "github.com/san-kum/hydrosim/internal/solver"

// StabilityPressureFloor is the pressure below which a step counts as unstable.
const StabilityPressureFloor = 1e-3

func Default() []solver.Metric {
	return []solver.Metric{
		NewMass(),
		NewMassDrift(),
		NewEnergy(),
		NewPeakSpeed(),
		NewStability(StabilityPressureFloor),
	}
}
