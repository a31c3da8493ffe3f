// File: nodes.go
// Title: fx AST Node Definitions
// Description: Expression nodes, return types and operator ranks.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial node definitions

package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msto63/fx/foundation/fx/diag"
)

// Node is implemented by every tree node
type Node interface {
	// String renders the node as an s-expression
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Location returns the source position of the node
	Location() diag.Location
}

// Expr is the sealed set of expression variants
type Expr interface {
	Node
	exprNode()
}

// ReturnType is the inferred result type of an expression
type ReturnType int

const (
	TypeInt ReturnType = iota
	TypeFloat
	TypeString
)

// String returns the lower-case type name
func (t ReturnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// ParseReturnType is the inverse of ReturnType.String
func ParseReturnType(s string) (ReturnType, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string":
		return TypeString, nil
	}
	return TypeInt, fmt.Errorf("unknown return type %q", s)
}

// Rank is the fold-binding strength of an operator; lower binds tighter
type Rank uint8

const (
	RankToPower Rank = iota
	RankMultiply
	RankDivide
	RankRemainder
	RankAdd
	RankSubtract
	RankLessThan
	RankGreaterThan
	RankComma
	RankEquals
	RankLessEqual
	RankGreaterEqual
	RankEqualEqual
	RankNotEqual
	RankAnd
	RankOr
)

// BasicRankCount is the number of single-symbol ranks
const BasicRankCount = 10

var rankSymbols = [...]string{
	"^", "*", "/", "%", "+", "-", "<", ">", ",", "=",
	"<=", ">=", "==", "!=", "&&", "||",
}

// String returns the operator spelling
func (r Rank) String() string {
	if int(r) < len(rankSymbols) {
		return rankSymbols[r]
	}
	return "rank(" + strconv.Itoa(int(r)) + ")"
}

// IsCompound reports whether the rank belongs to a two-symbol operator
func (r Rank) IsCompound() bool {
	return r >= BasicRankCount
}

// NumberLiteral is an integer or float literal. Only the field selected by
// IsFloat is meaningful; the other is zero.
type NumberLiteral struct {
	IsFloat bool
	Int     int64
	Float   float64
	Loc     diag.Location
}

// StringLiteral is a double-quoted literal without escape processing
type StringLiteral struct {
	Value string
	Loc   diag.Location
}

// FunctionDefinition is `let name(params) body`
type FunctionDefinition struct {
	Name       string
	Params     []string
	Body       Expr
	ReturnType ReturnType
	Loc        diag.Location
}

// ChainExpression is a comma-separated run of same-typed links
type ChainExpression struct {
	Links []Expr
	Loc   diag.Location
}

// BinaryOperation applies the operator of Rank to Left and Right
type BinaryOperation struct {
	Rank  Rank
	Left  Expr
	Right Expr
	Loc   diag.Location
}

// WhenExpression yields Result when Predicate holds
type WhenExpression struct {
	Predicate Expr
	Result    Expr
	Loc       diag.Location
}

// FunctionCall is `name(args)`
type FunctionCall struct {
	Name string
	Args []Expr
	Loc  diag.Location
}

// VariableRef names a parameter or binding
type VariableRef struct {
	Name string
	Loc  diag.Location
}

func (*NumberLiteral) exprNode()      {}
func (*StringLiteral) exprNode()      {}
func (*FunctionDefinition) exprNode() {}
func (*ChainExpression) exprNode()    {}
func (*BinaryOperation) exprNode()    {}
func (*WhenExpression) exprNode()     {}
func (*FunctionCall) exprNode()       {}
func (*VariableRef) exprNode()        {}

func (n *NumberLiteral) Location() diag.Location      { return n.Loc }
func (n *StringLiteral) Location() diag.Location      { return n.Loc }
func (n *FunctionDefinition) Location() diag.Location { return n.Loc }
func (n *ChainExpression) Location() diag.Location    { return n.Loc }
func (n *BinaryOperation) Location() diag.Location    { return n.Loc }
func (n *WhenExpression) Location() diag.Location     { return n.Loc }
func (n *FunctionCall) Location() diag.Location       { return n.Loc }
func (n *VariableRef) Location() diag.Location        { return n.Loc }

func (n *NumberLiteral) String() string {
	if n.IsFloat {
		return FormatFloat(n.Float)
	}
	return strconv.FormatInt(n.Int, 10)
}

func (n *StringLiteral) String() string {
	return `"` + n.Value + `"`
}

func (n *FunctionDefinition) String() string {
	return fmt.Sprintf("(let %s(%s) %s %s)", n.Name, strings.Join(n.Params, ", "), n.ReturnType, n.Body)
}

func (n *ChainExpression) String() string {
	return "(chain " + joinExprs(n.Links) + ")"
}

func (n *BinaryOperation) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Rank, n.Left, n.Right)
}

func (n *WhenExpression) String() string {
	return fmt.Sprintf("(when %s %s)", n.Predicate, n.Result)
}

func (n *FunctionCall) String() string {
	return n.Name + "(" + joinExprs(n.Args) + ")"
}

func (n *VariableRef) String() string {
	return n.Name
}

// FormatFloat renders a float so that it always reads as a float
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
