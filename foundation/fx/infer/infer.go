// File: infer.go
// Title: fx Return-Type Inference
// Description: Computes the return type of a definition body and checks
//              that binary operands and chain links agree. Calls resolve
//              through the function registry of the current run.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package infer

import (
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
)

// DefaultType is the type of a body made only of variable references
const DefaultType = ast.TypeInt

// Resolver looks up the return type of an already defined function
type Resolver interface {
	Lookup(name string) (ast.ReturnType, bool)
}

// Inferrer runs inference against one resolver
type Inferrer struct {
	resolver Resolver
	logger   *fxlog.Logger
}

// New creates an inferrer. A nil logger selects the default logger.
func New(resolver Resolver, logger *fxlog.Logger) *Inferrer {
	if logger == nil {
		logger = fxlog.GetDefault()
	}
	return &Inferrer{
		resolver: resolver,
		logger:   logger.WithField("component", "fx-infer"),
	}
}

// Infer is a shorthand for New(resolver, nil).ReturnType(e)
func Infer(e ast.Expr, resolver Resolver) (ast.ReturnType, error) {
	return New(resolver, nil).ReturnType(e)
}

// ReturnType infers the type of e. Variable references carry no type of
// their own; a tree that never meets a typed leaf yields DefaultType.
func (in *Inferrer) ReturnType(e ast.Expr) (ast.ReturnType, error) {
	rt, known, err := in.infer(e)
	if err != nil {
		return DefaultType, err
	}
	if !known {
		in.logger.Trace("return type unresolved, using default", fxlog.Fields{
			"location": e.Location().Message(),
			"type":     DefaultType.String(),
		})
		return DefaultType, nil
	}
	return rt, nil
}

func (in *Inferrer) infer(e ast.Expr) (ast.ReturnType, bool, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		if n.IsFloat {
			return ast.TypeFloat, true, nil
		}
		return ast.TypeInt, true, nil

	case *ast.StringLiteral:
		return ast.TypeString, true, nil

	case *ast.VariableRef:
		return 0, false, nil

	case *ast.BinaryOperation:
		left, leftKnown, err := in.infer(n.Left)
		if err != nil {
			return 0, false, err
		}
		right, rightKnown, err := in.infer(n.Right)
		if err != nil {
			return 0, false, err
		}
		switch {
		case leftKnown && rightKnown:
			if left != right {
				return 0, false, diag.Parsing(diag.KindUnbalancedBinaryExpression, n.Right.Location())
			}
			return left, true, nil
		case leftKnown:
			return left, true, nil
		default:
			return right, rightKnown, nil
		}

	case *ast.WhenExpression:
		if _, _, err := in.infer(n.Predicate); err != nil {
			return 0, false, err
		}
		return in.infer(n.Result)

	case *ast.ChainExpression:
		var (
			first ast.ReturnType
			known bool
		)
		for _, link := range n.Links {
			rt, linkKnown, err := in.infer(link)
			if err != nil {
				return 0, false, err
			}
			if !linkKnown {
				continue
			}
			if !known {
				first, known = rt, true
				continue
			}
			if rt != first {
				return 0, false, diag.Parsing(diag.KindUnbalancedChainExpression, link.Location())
			}
		}
		return first, known, nil

	case *ast.FunctionCall:
		for _, arg := range n.Args {
			if _, _, err := in.infer(arg); err != nil {
				return 0, false, err
			}
		}
		rt, ok := in.resolver.Lookup(n.Name)
		if !ok {
			in.logger.Debug("call to undefined function", fxlog.Fields{
				"name":     n.Name,
				"location": n.Loc.Message(),
			})
			return 0, false, diag.Parsing(diag.KindDeclaration, n.Loc)
		}
		return rt, true, nil

	case *ast.FunctionDefinition:
		return n.ReturnType, true, nil
	}

	return 0, false, diag.Parsing(diag.KindDeclaration, e.Location())
}
