package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hydrosim/internal/initial"
	"github.com/san-kum/hydrosim/internal/laws"
	"github.com/san-kum/hydrosim/internal/solver"
)

const (
	DefaultDimension    = 2
	DefaultResolution   = 64
	DefaultGamma        = laws.GammaIdealMonatomic
	DefaultMaxTime      = 1.0
	DefaultDumpInterval = 0.1
	DefaultCFLBuffer    = 0.5
	DefaultPrecision    = "single"
	DefaultCoordBits    = 64
	DefaultInitial      = "shear"
)

var validate = validator.New()

type Config struct {
	Dimension        int             `yaml:"dimension" validate:"gte=1,lte=6"`
	Resolution       int             `yaml:"resolution" validate:"gte=1"`
	Gamma            float64         `yaml:"gamma" validate:"gt=1"`
	MaxTime          float64         `yaml:"max_time" validate:"gt=0"`
	DumpInterval     float64         `yaml:"dump_interval" validate:"gt=0"`
	CFLBuffer        float64         `yaml:"cfl_buffer" validate:"gt=0,lte=1"`
	MinDt            float64         `yaml:"min_dt" validate:"gte=0"`
	Precision        string          `yaml:"precision" validate:"oneof=single double"`
	CoordBits        int             `yaml:"coord_bits" validate:"oneof=32 64"`
	Validation       bool            `yaml:"validate"`
	InitialCondition string          `yaml:"initial_condition" validate:"required"`
	InitState        InitStateConfig `yaml:"init_state"`
}

type InitStateConfig struct {
	Density   float64   `yaml:"density" validate:"gte=0"`
	Pressure  float64   `yaml:"pressure" validate:"gte=0"`
	Velocity  []float64 `yaml:"velocity"`
	Amplitude float64   `yaml:"amplitude"`
}

func DefaultConfig() *Config {
	return &Config{
		Dimension:        DefaultDimension,
		Resolution:       DefaultResolution,
		Gamma:            DefaultGamma,
		MaxTime:          DefaultMaxTime,
		DumpInterval:     DefaultDumpInterval,
		CFLBuffer:        DefaultCFLBuffer,
		Precision:        DefaultPrecision,
		CoordBits:        DefaultCoordBits,
		Validation:       true,
		InitialCondition: DefaultInitial,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(c.InitState.Velocity) > c.Dimension {
		return fmt.Errorf("invalid config: init_state.velocity has %d components for %d dimensions",
			len(c.InitState.Velocity), c.Dimension)
	}
	return nil
}

func (c *Config) DoublePrecision() bool { return c.Precision == "double" }

func (c *Config) SolverConfig() solver.Config {
	return solver.Config{
		MaxTime:      c.MaxTime,
		DumpInterval: c.DumpInterval,
		CFLBuffer:    c.CFLBuffer,
		MinDt:        c.MinDt,
		Validate:     c.Validation,
	}
}

func (c *Config) InitialParams() initial.Params {
	return initial.Params{
		Density:   c.InitState.Density,
		Pressure:  c.InitState.Pressure,
		Velocity:  c.InitState.Velocity,
		Amplitude: c.InitState.Amplitude,
	}
}
