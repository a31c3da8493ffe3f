// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-17 v0.2.0: Severity mapping for compiler codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a problem in the user's input, e.g. a syntax error
	SeverityLow Severity = iota

	// SeverityMedium is a failure with a workaround, e.g. a cache miss on a broken entry
	SeverityMedium

	// SeverityHigh is a failure of the toolchain itself
	SeverityHigh

	// SeverityCritical makes the process unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the default severity for a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeSyntax, CodeSemantic, CodeInvalidInput, CodeNotFound:
		return SeverityLow
	case CodeBoundary, CodeCache:
		return SeverityMedium
	case CodeIO, CodeConfigError, CodeInternal:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
