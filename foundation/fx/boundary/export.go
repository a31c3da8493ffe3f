// File: export.go
// Title: AST Export
// Description: Copies a parsed forest into a Heap. The forest is
//              validated first so that export never stops half way and
//              never has to free anything.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package boundary

import (
	"fmt"

	fxerror "github.com/msto63/fx/foundation/core/error"
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
)

func logger() *fxlog.Logger {
	return fxlog.GetDefault().WithField("component", "fx-boundary")
}

// Export transfers forest to heap. The returned graph belongs to the
// caller and must be released with Release.
func Export(heap Heap, forest []ast.Expr) (Forest, error) {
	for i, expr := range forest {
		if err := validate(expr); err != nil {
			return Forest{}, fxerror.Wrap(err, fmt.Sprintf("cannot export expression %d", i)).
				WithCode(fxerror.CodeBoundary).
				WithOperation("export")
		}
	}

	root := Forest{Len: len(forest)}
	if len(forest) > 0 {
		root.Ptr = exportList(heap, forest)
	}

	logger().Debug("forest exported", fxlog.Fields{
		"expressions": root.Len,
		"nodes":       countNodes(forest),
	})
	return root, nil
}

// validate rejects trees the exporter cannot represent: nil children and
// unknown node types
func validate(expr ast.Expr) error {
	if expr == nil {
		return fxerror.New("nil expression").WithCode(fxerror.CodeInternal)
	}
	switch n := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.VariableRef:
		return nil
	case *ast.FunctionDefinition:
		return validate(n.Body)
	case *ast.ChainExpression:
		return validateAll(n.Links)
	case *ast.BinaryOperation:
		if err := validate(n.Left); err != nil {
			return err
		}
		return validate(n.Right)
	case *ast.WhenExpression:
		if err := validate(n.Predicate); err != nil {
			return err
		}
		return validate(n.Result)
	case *ast.FunctionCall:
		return validateAll(n.Args)
	}
	return fxerror.Newf("unsupported node %T", expr).WithCode(fxerror.CodeInternal)
}

func validateAll(exprs []ast.Expr) error {
	for _, e := range exprs {
		if err := validate(e); err != nil {
			return err
		}
	}
	return nil
}

func countNodes(forest []ast.Expr) int {
	total := 0
	for _, e := range forest {
		total += ast.Count(e)
	}
	return total
}

// exportList stores exprs inline in one node block
func exportList(heap Heap, exprs []ast.Expr) Ptr {
	block := heap.AllocNodes(len(exprs))
	for i, e := range exprs {
		heap.StoreNode(block, i, exportNode(heap, e))
	}
	return block
}

// exportChild stores e in its own single-node block
func exportChild(heap Heap, e ast.Expr) Ptr {
	block := heap.AllocNodes(1)
	heap.StoreNode(block, 0, exportNode(heap, e))
	return block
}

func exportNode(heap Heap, e ast.Expr) Node {
	loc := e.Location()
	node := Node{
		Line:   uint32(loc.Line),
		Column: uint32(loc.Column),
		File:   heap.AllocString(loc.File),
	}

	switch n := e.(type) {
	case *ast.NumberLiteral:
		node.Tag = TagNumber
		node.IsFloat = n.IsFloat
		node.Int = n.Int
		node.Float = n.Float

	case *ast.StringLiteral:
		node.Tag = TagString
		node.Name = heap.AllocString(n.Value)

	case *ast.FunctionDefinition:
		node.Tag = TagDefinition
		node.Name = heap.AllocString(n.Name)
		node.ReturnType = n.ReturnType
		node.Left = exportChild(heap, n.Body)
		node.Len = len(n.Params)
		if len(n.Params) > 0 {
			node.List = heap.AllocStrings(len(n.Params))
			for i, param := range n.Params {
				heap.StoreStringAt(node.List, i, heap.AllocString(param))
			}
		}

	case *ast.ChainExpression:
		node.Tag = TagChain
		node.Len = len(n.Links)
		if len(n.Links) > 0 {
			node.List = exportList(heap, n.Links)
		}

	case *ast.BinaryOperation:
		node.Tag = TagBinary
		node.Rank = n.Rank
		node.Left = exportChild(heap, n.Left)
		node.Right = exportChild(heap, n.Right)

	case *ast.WhenExpression:
		node.Tag = TagWhen
		node.Left = exportChild(heap, n.Predicate)
		node.Right = exportChild(heap, n.Result)

	case *ast.FunctionCall:
		node.Tag = TagCall
		node.Name = heap.AllocString(n.Name)
		node.Len = len(n.Args)
		if len(n.Args) > 0 {
			node.List = exportList(heap, n.Args)
		}

	case *ast.VariableRef:
		node.Tag = TagVariable
		node.Name = heap.AllocString(n.Name)
	}
	return node
}
