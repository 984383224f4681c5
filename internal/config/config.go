// Package config provides configuration management for rgcidr.
//
// This package handles loading and validating an optional YAML defaults
// file. Every setting it holds is an operational default a user would
// otherwise have to retype on every invocation; CLI flags always override
// whatever this file supplies.
//
// Example configuration:
//
//	default_flags:
//	  strict_align: false
//	  include_non_ip: false
//	output:
//	  small_buffer_bytes: 1024
//	  large_buffer_bytes: 65536
//	  flush_threshold_fraction: 0.5
//	watch:
//	  poll_interval_ms: 200
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const Version = "1.0.0"

type DefaultFlags struct {
	StrictAlign  bool `yaml:"strict_align"`
	IncludeNonIP bool `yaml:"include_non_ip"`
}

type Output struct {
	SmallBufferBytes       int     `yaml:"small_buffer_bytes"`
	LargeBufferBytes       int     `yaml:"large_buffer_bytes"`
	FlushThresholdFraction float64 `yaml:"flush_threshold_fraction"`
}

type Watch struct {
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

type Config struct {
	DefaultFlags DefaultFlags `yaml:"default_flags"`
	Output       Output       `yaml:"output"`
	Watch        Watch        `yaml:"watch"`
}

// Default returns the built-in defaults used when no config file is
// present, or to fill gaps left by a partial one.
func Default() *Config {
	return &Config{
		Output: Output{
			SmallBufferBytes:       1024,
			LargeBufferBytes:       65536,
			FlushThresholdFraction: 0.5,
		},
		Watch: Watch{
			PollIntervalMS: 200,
		},
	}
}

// Validate checks that buffer sizes are positive and the flush threshold
// fraction is in (0,1].
func (c *Config) Validate() error {
	if c.Output.SmallBufferBytes <= 0 {
		return fmt.Errorf("output.small_buffer_bytes must be positive, got %d", c.Output.SmallBufferBytes)
	}
	if c.Output.LargeBufferBytes <= 0 {
		return fmt.Errorf("output.large_buffer_bytes must be positive, got %d", c.Output.LargeBufferBytes)
	}
	if c.Output.FlushThresholdFraction <= 0 || c.Output.FlushThresholdFraction > 1 {
		return fmt.Errorf("output.flush_threshold_fraction must be in (0,1], got %v", c.Output.FlushThresholdFraction)
	}
	if c.Watch.PollIntervalMS <= 0 {
		return fmt.Errorf("watch.poll_interval_ms must be positive, got %d", c.Watch.PollIntervalMS)
	}
	return nil
}

// Load reads and validates the YAML defaults file at path. A missing file
// is not an error: Load returns the built-in defaults instead. An empty
// path resolves to DefaultPath().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/rgcidr/config.yaml, falling back to
// $HOME/.config/rgcidr/config.yaml when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rgcidr", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rgcidr", "config.yaml")
}
