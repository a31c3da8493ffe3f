// Package diag provides source locations and the closed set of compiler
// diagnostics.
//
// Package: diag
// Title: fx Locations and Diagnostics
// Description: Location is a mutable cursor over a source file (line,
//              column, file name) used by the lexer. Error is the single
//              diagnostic type; its Kind is one of a fixed set and its Stage
//              tells whether it arose while parsing or while reading the
//              invocation arguments.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation
//
// Usage:
//
//	loc := diag.NewLocation("main.fx")
//	loc.NextColumn()
//	err := diag.Parsing(diag.KindUnknownToken, loc)
//	fmt.Fprint(os.Stderr, err.Report())
package diag
