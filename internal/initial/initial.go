// Package initial provides the named starting fields a run can be seeded with.
package initial

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/hydrosim/internal/grid"
)

const (
	DefaultRampSpeed      = 0.3
	DefaultShearAmplitude = 3.0
)

// Params tunes a preset. Zero values select the preset's defaults.
type Params struct {
	Density   float64
	Pressure  float64
	Velocity  []float64
	Amplitude float64
}

type builder func(dimension int, p Params) grid.InitialCondition

var presets = map[string]builder{
	"uniform": func(dimension int, p Params) grid.InitialCondition {
		return Uniform(dimension, or(p.Density, 1), or(p.Pressure, 1), p.Velocity)
	},
	"ramp": func(dimension int, p Params) grid.InitialCondition {
		return Ramp(dimension, or(p.Amplitude, DefaultRampSpeed), or(p.Pressure, 1))
	},
	"shear": func(dimension int, p Params) grid.InitialCondition {
		return Shear(dimension, or(p.Amplitude, DefaultShearAmplitude), or(p.Pressure, 1))
	},
}

func ByName(name string, dimension int, p Params) (grid.InitialCondition, error) {
	b, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown initial condition: %s (available: %v)", name, Names())
	}
	return b(dimension, p), nil
}

func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Uniform seeds every cell with the same state. Missing velocity components are zero.
func Uniform(dimension int, density, pressure float64, velocity []float64) grid.InitialCondition {
	return grid.InitialConditionFunc(func(int, []int, int) grid.Seed {
		u := make([]float64, dimension)
		copy(u, velocity)
		return grid.Seed{Density: density, Velocity: u, Pressure: pressure}
	})
}

// Ramp is a triangular density profile along the second axis, advected
// along that axis at a constant speed.
func Ramp(dimension int, speed, pressure float64) grid.InitialCondition {
	axis := profileAxis(dimension)
	return grid.InitialConditionFunc(func(_ int, coords []int, n int) grid.Seed {
		u := make([]float64, dimension)
		u[axis] = speed
		return grid.Seed{Density: triangle(coords[axis], n), Velocity: u, Pressure: pressure}
	})
}

// Shear has the Ramp density profile and a velocity along the second axis
// that varies sinusoidally with the first coordinate.
func Shear(dimension int, amplitude, pressure float64) grid.InitialCondition {
	axis := profileAxis(dimension)
	return grid.InitialConditionFunc(func(_ int, coords []int, n int) grid.Seed {
		u := make([]float64, dimension)
		period := float64(max(n-1, 1))
		u[axis] = amplitude * math.Sin(2*math.Pi*float64(coords[0])/period)
		return grid.Seed{Density: triangle(coords[axis], n), Velocity: u, Pressure: pressure}
	})
}

func triangle(y, n int) float64 {
	quarter := int(0.25 * float64(n))
	if y <= 2*quarter {
		return 1 + float64(y)/float64(n)
	}
	return 2 - float64(y)/float64(n)
}

func profileAxis(dimension int) int {
	if dimension < 2 {
		return 0
	}
	return 1
}

func or(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
