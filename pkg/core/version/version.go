// ============================================================================
// fx - expression language front end
// ============================================================================
//
// Package:     version
// Description: Central version management for the compiler and its services
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for all fx components
const (
	// Toolchain version
	Platform = "0.3.0"

	// Component versions
	Compiler = "0.3.0"
	Frontend = "0.3.0"
	Boundary = "0.2.0"

	// Language is the fx language revision the parser accepts
	Language = "1"
)

// Set at build time with -ldflags "-X github.com/msto63/fx/pkg/core/version.Commit=..."
var (
	Commit = "unknown"
	Date   = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "compiler", "fxc":
		return Compiler
	case "frontend":
		return Frontend
	case "boundary", "libfx":
		return Boundary
	default:
		return Platform
	}
}

// Info returns a one-line description for `fxc version`
func Info(name string) string {
	return fmt.Sprintf("%s %s (language %s, commit %s, built %s, %s/%s)",
		name, ServiceVersion(name), Language, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
