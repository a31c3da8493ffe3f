// File: error.go
// Title: Compiler Diagnostics
// Description: The closed set of diagnostic kinds and the Error type that
//              carries a kind, a stage and an optional location. Every
//              diagnostic is built through New.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package diag

import (
	"errors"
	"fmt"

	fxerror "github.com/msto63/fx/foundation/core/error"
)

// Kind identifies a diagnostic
type Kind int

const (
	KindEOF Kind = iota
	KindDeclaration
	KindRange
	KindIdentifier
	KindGrouping
	KindUnknownToken
	KindBadComma
	KindBadArgument
	KindMissingOutputFile
	KindUnbalancedBinaryExpression
	KindUnbalancedChainExpression
)

// Kinds lists every diagnostic kind
func Kinds() []Kind {
	return []Kind{
		KindEOF, KindDeclaration, KindRange, KindIdentifier, KindGrouping,
		KindUnknownToken, KindBadComma, KindBadArgument, KindMissingOutputFile,
		KindUnbalancedBinaryExpression, KindUnbalancedChainExpression,
	}
}

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindDeclaration:
		return "Declaration"
	case KindRange:
		return "Range"
	case KindIdentifier:
		return "Identifier"
	case KindGrouping:
		return "Grouping"
	case KindUnknownToken:
		return "UnknownToken"
	case KindBadComma:
		return "BadComma"
	case KindBadArgument:
		return "BadArgument"
	case KindMissingOutputFile:
		return "MissingOutputFile"
	case KindUnbalancedBinaryExpression:
		return "UnbalancedBinaryExpression"
	case KindUnbalancedChainExpression:
		return "UnbalancedChainExpression"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message returns the user-facing text of the kind
func (k Kind) Message() string {
	switch k {
	case KindEOF:
		return "unexpected end of file!"
	case KindDeclaration:
		return "expected function declaration!"
	case KindRange:
		return "improperly formatted range!"
	case KindIdentifier:
		return "expected identifier!"
	case KindGrouping:
		return "improperly formatted grouping!"
	case KindUnknownToken:
		return "unknown token!"
	case KindBadComma:
		return "comma placed badly!"
	case KindBadArgument:
		return "bad argument..."
	case KindMissingOutputFile:
		return "no output file supplied!"
	case KindUnbalancedBinaryExpression:
		return "unbalanced binary expression!"
	case KindUnbalancedChainExpression:
		return "chain does not have consistent types!"
	default:
		return "unknown diagnostic!"
	}
}

// Code maps the kind onto the shared error codes
func (k Kind) Code() fxerror.Code {
	switch k {
	case KindUnbalancedBinaryExpression, KindUnbalancedChainExpression:
		return fxerror.CodeSemantic
	case KindBadArgument, KindMissingOutputFile:
		return fxerror.CodeBoundary
	default:
		return fxerror.CodeSyntax
	}
}

// Stage names the phase a diagnostic was raised in
type Stage string

const (
	StageParse Stage = "parse"
	StageInit  Stage = "init"
)

// Error is a located compiler diagnostic
type Error struct {
	Kind     Kind
	Stage    Stage
	Location *Location
}

// New builds a diagnostic. loc may be nil when no source position applies.
func New(kind Kind, stage Stage, loc *Location) *Error {
	e := &Error{Kind: kind, Stage: stage}
	if loc != nil {
		copied := *loc
		e.Location = &copied
	}
	return e
}

// Parsing builds a parse-stage diagnostic at loc
func Parsing(kind Kind, loc Location) *Error {
	return New(kind, StageParse, &loc)
}

// Initializing builds an init-stage diagnostic without a location
func Initializing(kind Kind) *Error {
	return New(kind, StageInit, nil)
}

// Where returns the location message, or "internal"
func (e *Error) Where() string {
	if e.Location == nil {
		return InternalFile
	}
	return e.Location.Message()
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s, %s", e.Stage, e.Where(), e.Kind.Message())
}

// Report renders the block printed on stderr when compilation aborts
func (e *Error) Report() string {
	return fmt.Sprintf("\n\nERROR: [%s]\n >>   %s, %s\n\n", e.Stage, e.Where(), e.Kind.Message())
}

// Is matches another *Error of the same kind, so errors.Is works with
// diagnostics built by New(kind, ...) as targets
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Structured converts the diagnostic into a structured error for logging
func (e *Error) Structured() *fxerror.Error {
	err := fxerror.New(e.Kind.Message()).
		WithCode(e.Kind.Code()).
		WithOperation(string(e.Stage)).
		WithDetail("kind", e.Kind.String())
	if e.Location != nil {
		err.WithDetails(map[string]interface{}{
			"file":   e.Location.File,
			"line":   e.Location.Line + 1,
			"column": e.Location.Column + 1,
		})
	}
	return err
}

// IsKind reports whether err is, or wraps, a diagnostic of kind
func IsKind(err error, kind Kind) bool {
	var d *Error
	return errors.As(err, &d) && d.Kind == kind
}

// AsError extracts the diagnostic from err
func AsError(err error) (*Error, bool) {
	var d *Error
	ok := errors.As(err, &d)
	return d, ok
}
