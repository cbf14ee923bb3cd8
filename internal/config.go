package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the command-line flags for use with --config. Values
// given explicitly on the command line win over file values.
type FileConfig struct {
	Patterns []string `yaml:"patterns"`
	Command  string   `yaml:"command"`
	Debounce *int     `yaml:"debounce"`
	Throttle *int     `yaml:"throttle"`
	Exclude  []string `yaml:"exclude"`
	Initial  *bool    `yaml:"initial"`
	Kill     *bool    `yaml:"kill"`
	Verbose  *bool    `yaml:"verbose"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return fc, nil
}

// Merge applies file values underneath cfg. changed reports whether a
// flag was set explicitly on the command line; file values fill in
// everything else.
func (fc FileConfig) Merge(cfg Config, changed func(name string) bool) Config {
	if len(cfg.Patterns) == 0 && len(fc.Patterns) > 0 {
		cfg.Patterns = fc.Patterns
	}
	if !changed("command") && fc.Command != "" {
		cfg.Command = fc.Command
	}
	if !changed("debounce") && fc.Debounce != nil {
		cfg.Debounce = *fc.Debounce
	}
	if !changed("throttle") && fc.Throttle != nil {
		cfg.Throttle = *fc.Throttle
	}
	if !changed("exclude") && len(fc.Exclude) > 0 {
		cfg.Exclude = fc.Exclude
	}
	if !changed("initial") && fc.Initial != nil {
		cfg.Initial = *fc.Initial
	}
	if !changed("kill") && fc.Kill != nil {
		cfg.Kill = *fc.Kill
	}
	if !changed("verbose") && fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	return cfg
}
