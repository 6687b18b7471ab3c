package config

import "sort"

var Presets = map[string]map[string]*Config{
	PotentialHarmonic: {
		"unit": preset(func(c *Config) {
			c.Positions, c.Velocities = []float64{1.0}, []float64{0.0}
			c.Dt, c.Steps, c.PrintFreq = 0.01, 1000, 100
		}),
		"stiff": preset(func(c *Config) {
			c.K = 25
			c.Positions, c.Velocities = []float64{0.5}, []float64{0.0}
			c.Dt, c.Steps, c.PrintFreq = 0.002, 5000, 25
		}),
		"ensemble": preset(func(c *Config) {
			c.Positions = []float64{1.0, 0.5, -0.5, -1.0}
			c.Velocities = []float64{0.0, 0.5, -0.5, 0.0}
			c.Dt, c.Steps, c.PrintFreq = 0.01, 2000, 20
		}),
		"thermal": preset(func(c *Config) {
			c.SimType = SimNVT
			c.Positions, c.Velocities = []float64{0.0}, []float64{0.0}
			c.Temperature, c.Gamma = 0.5, 1.0
			c.Dt, c.Steps, c.PrintFreq = 0.01, 20000, 50
		}),
	},
	PotentialDoubleWell: {
		"asymmetric": preset(func(c *Config) {
			c.Potential = PotentialDoubleWell
		}),
		"symmetric": preset(func(c *Config) {
			c.Potential = PotentialDoubleWell
			c.A, c.B, c.C, c.D = 1.0, 3.0, 0.0, 0.0
			c.Positions, c.Velocities = []float64{1.2}, []float64{0.0}
			c.Dt, c.Steps, c.PrintFreq = 0.002, 10000, 20
		}),
		"hopping": preset(func(c *Config) {
			c.Potential = PotentialDoubleWell
			c.A, c.B, c.C, c.D = 1.0, 2.0, 0.0, 0.0
			c.SimType = SimNVT
			c.Positions, c.Velocities = []float64{1.0}, []float64{0.0}
			c.Temperature, c.Gamma = 0.4, 0.5
			c.Dt, c.Steps, c.PrintFreq = 0.005, 100000, 100
		}),
	},
}

func preset(apply func(*Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(potential, name string) *Config {
	byPotential, ok := Presets[potential]
	if !ok {
		return nil
	}
	cfg, ok := byPotential[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names for a potential, sorted.
func ListPresets(potential string) []string {
	byPotential, ok := Presets[potential]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byPotential))
	for name := range byPotential {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
