// ============================================================================
// fx - expression language front end
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating component loggers from config
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "json", "text" or "console" (default: json)
	Format string

	// Output writer (default: stderr)
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// FromConfig derives a LoggerConfig from the [logging] section
func FromConfig(serviceName string, cfg config.LoggingConfig) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       cfg.Level,
		Format:      cfg.Format,
	}
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *fxlog.Logger {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	// Unknown values fall back to info/json
	level, _ := fxlog.ParseLevel(cfg.Level)
	format, _ := fxlog.ParseFormat(cfg.Format)

	return fxlog.NewWithConfig(fxlog.Config{
		Level:        level,
		Format:       format,
		Output:       output,
		Name:         cfg.ServiceName,
		EnableCaller: level <= fxlog.LevelDebug,
	}).WithField("component", cfg.ServiceName)
}
