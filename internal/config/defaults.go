package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/steploop.yaml
var defaultYAML []byte

// Default returns the hardcoded configuration, matching defaults/steploop.yaml.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Snake",
			Width:  1280,
			Height: 720,
		},
		Loop: LoopConfig{
			UpdateRate:      60,
			MaxTicksPerWake: 0,
			WakeHint:        time.Millisecond,
		},
		Input: InputConfig{
			ScrollReset: "persist",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.steploop/steploop.log",
		},
		Storage: StorageConfig{
			Enabled: true,
			DBPath:  "~/.steploop/stats.db",
		},
	}
}
