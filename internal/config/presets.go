package config

import "sort"

var Presets = map[string]*Config{
	"classic": {
		Mapping: "banded", Width: 256, Height: 256, Frames: 240, FPS: 60,
		TimeIncrement: DefaultTimeIncrement, Rate: 0.2, Theme: "midnight",
	},
	"soft": {
		Mapping: "unbanded-k4", Width: 256, Height: 256, Frames: 240, FPS: 60,
		TimeIncrement: DefaultTimeIncrement, Rate: 0.2, Theme: "paper",
	},
	"threshold": {
		Mapping: "unbanded-k20", Width: 256, Height: 256, Frames: 240, FPS: 60,
		TimeIncrement: DefaultTimeIncrement, Rate: 0.2, Theme: "midnight",
	},
	"still": {
		Mapping: "banded", Width: 192, Height: 192, Frames: 120, FPS: 30,
		TimeIncrement: DefaultTimeIncrement, Rate: 0, Theme: "phosphor",
	},
	"poster": {
		Mapping: "banded", Width: 1024, Height: 1024, Frames: 1, FPS: 60,
		TimeIncrement: DefaultTimeIncrement, Rate: 0, Theme: "midnight",
		Output: "metaball.png",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := cfg.Clone()
	if cp.Output == "" {
		cp.Output = DefaultConfig().Output
	}
	return cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
