package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/mdsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	PotentialHarmonic   = "harmonic"
	PotentialDoubleWell = "double_well"

	SimNVE = "nve"
	SimNVT = "nvt"

	// StdoutOutput selects standard output as the record sink.
	StdoutOutput = "-"
)

const (
	DefaultDt          = 0.002
	DefaultSteps       = 10000
	DefaultPrintFreq   = 10
	DefaultMass        = 1.0
	DefaultK           = 1.0
	DefaultPosition    = 1.5
	DefaultVelocity    = 0.2
	DefaultOutput      = "output.log"
	DefaultTemperature = 1.0
	DefaultGamma       = 1.0
	DefaultSeed        = 42
)

type Config struct {
	Potential string `yaml:"potential" validate:"required,oneof=harmonic double_well"`

	// harmonic
	K  float64 `yaml:"k"`
	X0 float64 `yaml:"x0"`

	// double well
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`

	Mass       float64   `yaml:"mass" validate:"gt=0"`
	Positions  []float64 `yaml:"positions" validate:"required,min=1"`
	Velocities []float64 `yaml:"velocities" validate:"required,min=1"`

	SimType   string  `yaml:"sim_type" validate:"required,oneof=nve nvt"`
	Dt        float64 `yaml:"dt" validate:"gt=0"`
	Steps     int     `yaml:"steps" validate:"gte=0"`
	PrintFreq int     `yaml:"print_freq" validate:"gte=1"`
	Output    string  `yaml:"output" validate:"required"`

	// thermostat, nvt only
	Temperature float64 `yaml:"temperature"`
	Gamma       float64 `yaml:"gamma"`
	Seed        uint64  `yaml:"seed"`
}

var validate = validator.New()

// configFields are the fields whose failures are configuration errors
// rather than out-of-range parameters.
var configFields = map[string]bool{
	"Potential":  true,
	"SimType":    true,
	"Positions":  true,
	"Velocities": true,
	"Output":     true,
}

func DefaultConfig() *Config {
	return &Config{
		Potential:   PotentialHarmonic,
		K:           DefaultK,
		A:           1.0,
		B:           1.0,
		C:           0.5,
		D:           0.0,
		Mass:        DefaultMass,
		Positions:   []float64{DefaultPosition},
		Velocities:  []float64{DefaultVelocity},
		SimType:     SimNVE,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		PrintFreq:   DefaultPrintFreq,
		Output:      DefaultOutput,
		Temperature: DefaultTemperature,
		Gamma:       DefaultGamma,
		Seed:        DefaultSeed,
	}
}

// Validate checks the configuration before any simulation state exists.
// Unknown names and malformed vectors wrap dynamo.ErrConfiguration;
// out-of-range numbers wrap dynamo.ErrInvalidParameter.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
		}
		fe := verrs[0]
		kind := dynamo.ErrInvalidParameter
		if configFields[fe.StructField()] {
			kind = dynamo.ErrConfiguration
		}
		return fmt.Errorf("%w: %s failed %q (value %v)", kind, fe.Field(), fe.Tag(), fe.Value())
	}

	if len(c.Positions) != len(c.Velocities) {
		return fmt.Errorf("%w: %d positions but %d velocities", dynamo.ErrConfiguration, len(c.Positions), len(c.Velocities))
	}
	for i := range c.Positions {
		if !finite(c.Positions[i]) || !finite(c.Velocities[i]) {
			return fmt.Errorf("%w: non-finite initial value for particle %d", dynamo.ErrConfiguration, i)
		}
	}
	if c.Potential == PotentialHarmonic && (c.K <= 0 || !finite(c.K)) {
		return dynamo.Invalidf("k must be positive and finite, got %g", c.K)
	}
	if !finite(c.Mass) || !finite(c.Dt) {
		return dynamo.Invalidf("mass and dt must be finite, got %g and %g", c.Mass, c.Dt)
	}
	if c.SimType == SimNVT {
		if c.Temperature < 0 || !finite(c.Temperature) {
			return dynamo.Invalidf("temperature must be non-negative and finite, got %g", c.Temperature)
		}
		if c.Gamma <= 0 || !finite(c.Gamma) {
			return dynamo.Invalidf("gamma must be positive and finite, got %g", c.Gamma)
		}
	}
	return nil
}

// PotentialParams returns the coefficients used by the selected potential.
func (c *Config) PotentialParams() map[string]float64 {
	switch c.Potential {
	case PotentialHarmonic:
		return map[string]float64{"k": c.K, "x0": c.X0}
	case PotentialDoubleWell:
		return map[string]float64{"a": c.A, "b": c.B, "c": c.C, "d": c.D}
	default:
		return nil
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Positions = append([]float64(nil), c.Positions...)
	out.Velocities = append([]float64(nil), c.Velocities...)
	return &out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrConfiguration, path, err)
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

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
