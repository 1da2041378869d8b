package main

import (
	"github.com/leandrodaf/midikeys/internal/config"
	"github.com/leandrodaf/midikeys/internal/keymap"
	"github.com/spf13/pflag"
)

// resolveConfig loads the settings file, if any, and lets explicitly set flags win.
func resolveConfig(fs *pflag.FlagSet, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if fs.Changed("whites") {
		cfg.Preset = keymap.PresetFull.String()
		if f.whites {
			cfg.Preset = keymap.PresetWhites.String()
		}
	}
	if fs.Changed("device") {
		cfg.Device = f.device
	}
	if fs.Changed("countdown") {
		cfg.Countdown = f.countdown
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	return cfg, cfg.Validate()
}
