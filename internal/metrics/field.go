package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/grid"
)

// CellVolume is the volume of one cell of the unit box.
func CellVolume(f grid.Field) float64 {
	return math.Pow(1/float64(f.Resolution()), float64(f.Dimension()))
}

// TotalMass integrates density over the unit box.
func TotalMass(f grid.Field) float64 {
	sum := 0.0
	for i := 0; i < f.Len(); i++ {
		sum += f.Sample(i).Density
	}
	return sum * CellVolume(f)
}

// TotalEnergy integrates the total energy density over the unit box.
func TotalEnergy(f grid.Field) float64 {
	sum := 0.0
	for i := 0; i < f.Len(); i++ {
		sum += f.Sample(i).Energy
	}
	return sum * CellVolume(f)
}

// PeakSpeed is the largest speed on the grid, without the stability floor.
func PeakSpeed(f grid.Field) float64 {
	peak := 0.0
	for i := 0; i < f.Len(); i++ {
		peak = math.Max(peak, f.Sample(i).Speed())
	}
	return peak
}

// Summary holds the scalar diagnostics of one committed field.
type Summary struct {
	Mass        float64
	Energy      float64
	PeakSpeed   float64
	MinPressure float64
}

func Summarize(f grid.Field) Summary {
	s := Summary{MinPressure: math.Inf(1)}
	for i := 0; i < f.Len(); i++ {
		c := f.Sample(i)
		s.Mass += c.Density
		s.Energy += c.Energy
		s.PeakSpeed = math.Max(s.PeakSpeed, c.Speed())
		s.MinPressure = math.Min(s.MinPressure, c.Pressure)
	}
	v := CellVolume(f)
	s.Mass *= v
	s.Energy *= v
	return s
}
