// Package log provides structured logging for the fx toolchain.
//
// Package: log
// Title: fx Structured Logging
// Description: Leveled, structured logging with contextual fields and JSON,
//              text or colored console output. Compiler stages log with a
//              "component" field and time themselves with Timer.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-17 v0.2.0: Console colors through fatih/color, removed async mode
//
// Usage:
//
//	import fxlog "github.com/msto63/fx/foundation/core/log"
//
//	logger := fxlog.GetDefault().WithField("component", "fx-parser")
//	logger.Debug("definition registered", fxlog.Fields{"name": "add", "type": "int"})
//
//	timer := logger.StartTimer("tokenize")
//	// ... work
//	timer.Stop()
package log
