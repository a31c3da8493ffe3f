// File: fx.go
// Title: fx Compiler Driver
// Description: Runs the front end over one source unit: read, tokenize,
//              parse and infer. Failures of every stage are collected in
//              a trace and the most relevant one is reported.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial driver

// Package fx is the entry point of the fx front end. A Compiler turns a
// source file into a typed, located forest ready to be exported through
// the boundary package.
package fx

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	fxerror "github.com/msto63/fx/foundation/core/error"
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/foundation/fx/parser"
)

// Options configures a Compiler
type Options struct {
	Logger *fxlog.Logger

	// MaxSourceBytes rejects larger sources; 0 disables the check
	MaxSourceBytes int
}

// Result is a successful compilation
type Result struct {
	RunID     string
	File      string
	Forest    []ast.Expr
	Functions map[string]ast.ReturnType
	// Order lists Functions in definition order
	Order    []string
	Tokens   int
	Duration time.Duration
}

// Failure is returned when a compilation aborts. It unwraps to the most
// relevant error of the trace, so diag.AsError finds the diagnostic.
type Failure struct {
	RunID string
	File  string
	Cause error
	Trace *multierror.Error
}

func (f *Failure) Error() string { return f.Cause.Error() }
func (f *Failure) Unwrap() error { return f.Cause }

// Report renders the failure for a terminal. Diagnostics use their
// report block; other errors are printed as is.
func (f *Failure) Report() string {
	if d, ok := diag.AsError(f.Cause); ok {
		return d.Report()
	}
	return "\n\nERROR: " + f.Cause.Error() + "\n\n"
}

// Compiler runs compilations. It holds no per-run state and is safe for
// concurrent use; every run gets its own parser and registry.
type Compiler struct {
	logger  *fxlog.Logger
	options Options
}

// New creates a compiler
func New(opts Options) *Compiler {
	if opts.Logger == nil {
		opts.Logger = fxlog.GetDefault()
	}
	return &Compiler{
		logger:  opts.Logger.WithField("component", "fx-driver"),
		options: opts,
	}
}

// CompileFile reads path fully and compiles it
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		trace := multierror.Append(nil, fxerror.Wrap(err, "failed to read source").
			WithCode(fxerror.CodeIO).
			WithOperation("read").
			WithDetail("file", path))
		return nil, c.fail(uuid.NewString(), path, trace)
	}
	return c.CompileSource(ctx, path, src)
}

// CompileSource compiles src, naming it file in locations
func (c *Compiler) CompileSource(ctx context.Context, file string, src []byte) (*Result, error) {
	runID := uuid.NewString()
	logger := c.logger.WithFields(fxlog.Fields{"run_id": runID, "file": file})
	timer := logger.StartTimer("compile")

	var trace *multierror.Error
	if err := ctx.Err(); err != nil {
		trace = multierror.Append(trace, fxerror.Wrap(err, "compilation cancelled").WithOperation("compile"))
		timer.StopWithError(err)
		return nil, c.fail(runID, file, trace)
	}

	p, err := parser.New(parser.Options{Logger: c.options.Logger})
	if err != nil {
		trace = multierror.Append(trace, err)
		timer.StopWithError(err)
		return nil, c.fail(runID, file, trace)
	}

	if limit := c.options.MaxSourceBytes; limit > 0 && len(src) > limit {
		err := fxerror.Newf("source exceeds maximum size: %d > %d", len(src), limit).
			WithCode(fxerror.CodeInvalidInput).
			WithOperation("read").
			WithDetail("file", file)
		trace = multierror.Append(trace, err)
		timer.StopWithError(err)
		return nil, c.fail(runID, file, trace)
	}

	tokens, err := parser.NewLexer(file, src).WithLogger(c.options.Logger).Tokenize()
	if err != nil {
		trace = multierror.Append(trace, err, stageError(err, "tokenize", file))
		timer.StopWithError(err)
		return nil, c.fail(runID, file, trace)
	}

	forest, err := p.Run(tokens)
	if err != nil {
		trace = multierror.Append(trace, err, stageError(err, "parse", file))
		timer.StopWithError(err)
		return nil, c.fail(runID, file, trace)
	}

	reg := p.Registry()
	result := &Result{
		RunID:     runID,
		File:      file,
		Forest:    forest,
		Functions: reg.Snapshot(),
		Order:     reg.Names(),
		Tokens:    len(tokens),
		Duration:  timer.Stop(),
	}
	return result, nil
}

// Tokens tokenizes src without parsing
func (c *Compiler) Tokens(file string, src []byte) ([]parser.Token, error) {
	return parser.NewLexer(file, src).WithLogger(c.options.Logger).Tokenize()
}

func stageError(err error, stage, file string) error {
	return fxerror.Wrap(err, stage+" failed").
		WithOperation(stage).
		WithDetail("file", file)
}

// fail logs the trace and wraps its most relevant entry
func (c *Compiler) fail(runID, file string, trace *multierror.Error) error {
	cause := mostRelevant(trace)
	c.logger.Debug("compilation trace", fxlog.Fields{
		"run_id": runID,
		"file":   file,
		"trace":  trace.Error(),
	})
	if d, ok := cause.(*diag.Error); ok {
		c.logger.WithField("run_id", runID).LogError(d.Structured())
	} else {
		c.logger.WithField("run_id", runID).LogError(cause)
	}
	return &Failure{RunID: runID, File: file, Cause: cause, Trace: trace}
}

// mostRelevant prefers a located diagnostic, then any diagnostic, then
// the first error
func mostRelevant(trace *multierror.Error) error {
	var unlocated error
	for _, err := range trace.Errors {
		var d *diag.Error
		if !errors.As(err, &d) {
			continue
		}
		if d.Location != nil {
			return d
		}
		if unlocated == nil {
			unlocated = d
		}
	}
	if unlocated != nil {
		return unlocated
	}
	return trace.Errors[0]
}
