// Package config loads the optional midikeys settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/leandrodaf/midikeys/internal/keymap"
	"github.com/leandrodaf/midikeys/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by file playback and live input.
type Config struct {
	Preset    string        `yaml:"preset"`    // "full" or "whites"
	Countdown time.Duration `yaml:"countdown"` // delay before file playback starts
	Device    int           `yaml:"device"`    // MIDI input index for live mode
	LogLevel  string        `yaml:"logLevel"`
	LogFile   string        `yaml:"logFile"` // empty logs to the console
	DryRun    bool          `yaml:"dryRun"`  // log keys instead of injecting them
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Preset:    keymap.PresetFull.String(),
		Countdown: 3 * time.Second,
		Device:    0,
		LogLevel:  "info",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	var errs []error
	if _, err := keymap.ParsePreset(c.Preset); err != nil {
		errs = append(errs, err)
	}
	if _, err := contracts.ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Countdown < 0 {
		errs = append(errs, fmt.Errorf("countdown must not be negative, got %s", c.Countdown))
	}
	if c.Device < 0 {
		errs = append(errs, fmt.Errorf("device index must not be negative, got %d", c.Device))
	}
	return errors.Join(errs...)
}

// KeyPreset returns the parsed preset. Call Validate first.
func (c Config) KeyPreset() keymap.Preset {
	p, _ := keymap.ParsePreset(c.Preset)
	return p
}

// Level returns the parsed log level. Call Validate first.
func (c Config) Level() contracts.LogLevel {
	l, _ := contracts.ParseLogLevel(c.LogLevel)
	return l
}
