package config

import "sort"

// Presets are named scenarios applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"tumble": func(c *Config) {
		c.Policy = "detumble"
		c.Steps = 400
	},
	"slow": func(c *Config) {
		c.Policy = "detumble"
		c.Steps = 200
		c.InitState.AngularVelocity = 0.02
	},
	"stationary": func(c *Config) {
		c.Policy = "rest"
		c.Steps = 100
		c.InitState.AngularVelocity = 0
	},
	"noiseless": func(c *Config) {
		c.Policy = "bangbang"
		c.Steps = 400
		c.Noise = NoiseConfig{}
	},
	"point": func(c *Config) {
		c.Policy = "point"
		c.Steps = 2000
		c.PolicyParams.Target = 1.5
	},
	"settle": func(c *Config) {
		c.Policy = "detumble"
		c.Steps = 2000
		c.SettleSteps = 25
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	cfg.Preset = name
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
