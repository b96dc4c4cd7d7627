package config

import "sort"

// Presets are complete named configurations, keyed by gait name.
var Presets = map[string]func() *Config{
	"stand": func() *Config {
		cfg := DefaultConfig()
		cfg.Gait.Planner = "stand"
		cfg.Gait.VelocityX = 0
		cfg.Gait.VelocityY = 0
		return cfg
	},
	"trot": func() *Config {
		cfg := DefaultConfig()
		cfg.Gait.Planner = "trot"
		cfg.Gait.VelocityX = 0.4
		return cfg
	},
	"trot-slow": func() *Config {
		cfg := DefaultConfig()
		cfg.Gait.Planner = "trot"
		cfg.Gait.Period = 1.0
		cfg.Gait.VelocityX = 0.15
		cfg.Swing.LiftHeight = 0.05
		return cfg
	},
}

// GetPreset returns a fresh copy of a named preset, or nil if unknown.
func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
