package config

import "sort"

var Presets = map[string]*Config{
	"stiff": {
		Enabled: true, MaximumForce: 100000, PositionSpring: 100000, PositionDamper: 10000,
		Dt: 0.01, Ticks: 1000, BootstrapTick: 2, Integrator: "rk4", SettleTol: 0.001, LogLevel: "info",
	},
	"soft": {
		Enabled: true, MaximumForce: 500, PositionSpring: 200, PositionDamper: 40,
		Dt: 0.02, Ticks: 750, BootstrapTick: 2, Integrator: "verlet", SettleTol: 0.05, LogLevel: "info",
	},
	// Editor scenes are parented kinematically and have no bootstrap delay.
	"editor": {
		Enabled: true, MaximumForce: DefaultMaximumForce, PositionSpring: DefaultPositionSpring, PositionDamper: DefaultPositionDamper,
		Dt: 0.02, Ticks: 200, BootstrapTick: 0, Integrator: "euler", SettleTol: DefaultSettleTol, LogLevel: "info",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
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
