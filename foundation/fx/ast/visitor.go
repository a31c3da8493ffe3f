// File: visitor.go
// Title: fx AST Visitor and Inspection
// Description: Visitor interface with a walking BaseVisitor, and Inspect for
//              closure-based depth-first traversal.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial visitor implementation

package ast

// Visitor traverses expression nodes
type Visitor interface {
	VisitNumberLiteral(n *NumberLiteral) interface{}
	VisitStringLiteral(n *StringLiteral) interface{}
	VisitFunctionDefinition(n *FunctionDefinition) interface{}
	VisitChainExpression(n *ChainExpression) interface{}
	VisitBinaryOperation(n *BinaryOperation) interface{}
	VisitWhenExpression(n *WhenExpression) interface{}
	VisitFunctionCall(n *FunctionCall) interface{}
	VisitVariableRef(n *VariableRef) interface{}
}

func (n *NumberLiteral) Accept(v Visitor) interface{}      { return v.VisitNumberLiteral(n) }
func (n *StringLiteral) Accept(v Visitor) interface{}      { return v.VisitStringLiteral(n) }
func (n *FunctionDefinition) Accept(v Visitor) interface{} { return v.VisitFunctionDefinition(n) }
func (n *ChainExpression) Accept(v Visitor) interface{}    { return v.VisitChainExpression(n) }
func (n *BinaryOperation) Accept(v Visitor) interface{}    { return v.VisitBinaryOperation(n) }
func (n *WhenExpression) Accept(v Visitor) interface{}     { return v.VisitWhenExpression(n) }
func (n *FunctionCall) Accept(v Visitor) interface{}       { return v.VisitFunctionCall(n) }
func (n *VariableRef) Accept(v Visitor) interface{}        { return v.VisitVariableRef(n) }

// BaseVisitor walks every child and returns nil.
// Embed it and override the methods of interest; set Self to the embedding
// visitor so the walk dispatches back to the overrides.
type BaseVisitor struct {
	Self Visitor
}

func (bv *BaseVisitor) self() Visitor {
	if bv.Self != nil {
		return bv.Self
	}
	return bv
}

func (bv *BaseVisitor) VisitNumberLiteral(*NumberLiteral) interface{} { return nil }
func (bv *BaseVisitor) VisitStringLiteral(*StringLiteral) interface{} { return nil }
func (bv *BaseVisitor) VisitVariableRef(*VariableRef) interface{}     { return nil }

func (bv *BaseVisitor) VisitFunctionDefinition(n *FunctionDefinition) interface{} {
	n.Body.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitChainExpression(n *ChainExpression) interface{} {
	for _, link := range n.Links {
		link.Accept(bv.self())
	}
	return nil
}

func (bv *BaseVisitor) VisitBinaryOperation(n *BinaryOperation) interface{} {
	n.Left.Accept(bv.self())
	n.Right.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitWhenExpression(n *WhenExpression) interface{} {
	n.Predicate.Accept(bv.self())
	n.Result.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitFunctionCall(n *FunctionCall) interface{} {
	for _, arg := range n.Args {
		arg.Accept(bv.self())
	}
	return nil
}

// Children returns the direct sub-expressions of e in source order.
// A when expression yields its result before its predicate.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *FunctionDefinition:
		return []Expr{n.Body}
	case *ChainExpression:
		return n.Links
	case *BinaryOperation:
		return []Expr{n.Left, n.Right}
	case *WhenExpression:
		return []Expr{n.Result, n.Predicate}
	case *FunctionCall:
		return n.Args
	default:
		return nil
	}
}

// Inspect traverses e depth-first, calling fn for every node.
// Children are skipped when fn returns false.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Inspect(child, fn)
	}
}

// Count returns the number of nodes reachable from e, e included
func Count(e Expr) int {
	n := 0
	Inspect(e, func(Expr) bool {
		n++
		return true
	})
	return n
}
