package app

import (
	"errors"
	"fmt"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	outputs    = []string{"yaml", "text"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModulesPath string // type, converter and node class manifests
	GraphPath   string // node and cable blocks

	LogFormat string
	LogLevel  string
	Output    string
	Workers   int
}

// NewConfig validates cfg and fills in defaults for empty fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.ModulesPath == "" {
		cfg.ModulesPath = "modules"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Output == "" {
		cfg.Output = "yaml"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if !slices.Contains(outputs, cfg.Output) {
		return nil, fmt.Errorf("invalid output %q: must be 'yaml' or 'text'", cfg.Output)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("invalid worker count %d: must be positive", cfg.Workers)
	}
	return &cfg, nil
}
