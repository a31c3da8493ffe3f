// File: codes.go
// Title: Error Codes
// Description: Error codes shared by the compiler stages, the build cache,
//              the configuration layer and the gRPC frontend service.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with standard error codes
// - 2026-10-17 v0.2.0: Compiler stage codes

package error

import "strings"

// Code classifies an error for callers and log processors
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Compiler stages
	CodeSyntax   Code = "SYNTAX"
	CodeSemantic Code = "SEMANTIC"
	CodeBoundary Code = "BOUNDARY"

	// Infrastructure
	CodeIO          Code = "IO_ERROR"
	CodeCache       Code = "CACHE_ERROR"
	CodeConfigError Code = "CONFIG_ERROR"
)

// String returns the code value
func (c Code) String() string {
	return string(c)
}

// IsValid reports whether the code is one of the known codes
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput,
		CodeSyntax, CodeSemantic, CodeBoundary,
		CodeIO, CodeCache, CodeConfigError:
		return true
	}
	return false
}

// Category groups codes for reporting
func (c Code) Category() string {
	switch c {
	case CodeSyntax, CodeSemantic, CodeBoundary:
		return "compiler"
	case CodeIO, CodeCache, CodeConfigError:
		return "infrastructure"
	case CodeInvalidInput, CodeNotFound:
		return "input"
	default:
		return strings.ToLower(string(CodeInternal))
	}
}
