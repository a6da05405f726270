package config

import "sort"

var Presets = map[string]*Config{
	"shear": {
		Dimension: 2, Resolution: 64, Gamma: DefaultGamma, MaxTime: 1.0, DumpInterval: 0.1,
		CFLBuffer: 0.5, Precision: "single", CoordBits: 64, Validation: true,
		InitialCondition: "shear",
	},
	"ramp": {
		Dimension: 2, Resolution: 64, Gamma: DefaultGamma, MaxTime: 1.0, DumpInterval: 0.1,
		CFLBuffer: 0.5, Precision: "single", CoordBits: 64, Validation: true,
		InitialCondition: "ramp",
	},
	"rest": {
		Dimension: 2, Resolution: 4, Gamma: DefaultGamma, MaxTime: 0.5, DumpInterval: 0.1,
		CFLBuffer: 0.5, Precision: "double", CoordBits: 32, Validation: true,
		InitialCondition: "uniform",
		InitState:        InitStateConfig{Density: 1, Pressure: 1},
	},
	"drift": {
		Dimension: 1, Resolution: 128, Gamma: DefaultGamma, MaxTime: 0.5, DumpInterval: 0.05,
		CFLBuffer: 0.4, Precision: "double", CoordBits: 32, Validation: true,
		InitialCondition: "uniform",
		InitState:        InitStateConfig{Density: 1, Pressure: 1, Velocity: []float64{0.5}},
	},
	"shear-3d": {
		Dimension: 3, Resolution: 24, Gamma: DefaultGamma, MaxTime: 0.5, DumpInterval: 0.1,
		CFLBuffer: 0.4, Precision: "double", CoordBits: 64, Validation: true,
		InitialCondition: "shear",
		InitState:        InitStateConfig{Amplitude: 1},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.InitState.Velocity = append([]float64(nil), cfg.InitState.Velocity...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
