package grid

import "math"

// MinSignalSpeed floors the stability metric so a field at rest does not
// produce an unbounded time step.
const MinSignalSpeed = 0.1

// SpecificKineticEnergy returns ½|u|².
func SpecificKineticEnergy[R Real](velocity []R) R {
	var ke R
	for _, u := range velocity {
		ke += 0.5 * u * u
	}
	return ke
}

// Pressure is the ideal gas equation of state: P = (γ-1)(E - ρ·½|u|²).
func Pressure[R Real](gamma, density, energy R, velocity []R) R {
	return (gamma - 1) * (energy - density*SpecificKineticEnergy(velocity))
}

// TotalEnergy inverts Pressure: E = P/(γ-1) + ρ·½|u|².
func TotalEnergy[R Real](gamma, density, pressure R, velocity []R) R {
	return pressure/(gamma-1) + density*SpecificKineticEnergy(velocity)
}

func norm[R Real](v []R) R {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return R(math.Sqrt(sum))
}
