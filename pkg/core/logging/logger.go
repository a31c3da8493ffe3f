// ============================================================================
// fx - expression language front end
// ============================================================================
//
// Package:     logging
// Description: Key/value logging on top of the foundation logger
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	fxlog "github.com/msto63/fx/foundation/core/log"
)

// Logger takes alternating key/value arguments, as gRPC middleware does,
// and forwards them as fields to the foundation logger
type Logger struct {
	*fxlog.Logger
	name string
}

// New creates a key/value logger with the default configuration
func New(name string) *Logger {
	return Wrap(name, NewLogger(DefaultLoggerConfig(name)))
}

// Wrap adapts an existing foundation logger
func Wrap(name string, logger *fxlog.Logger) *Logger {
	return &Logger{Logger: logger, name: name}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// WithLevel returns a copy filtering below level
func (l *Logger) WithLevel(level fxlog.Level) *Logger {
	return Wrap(l.name, l.Logger.WithLevel(level))
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs at info level
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs at warn level
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs at error level
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields pairs up keys and values. Non-string keys and a trailing
// key without a value are dropped.
func toFields(keysAndValues ...interface{}) fxlog.Fields {
	if len(keysAndValues) < 2 {
		return nil
	}

	fields := make(fxlog.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
