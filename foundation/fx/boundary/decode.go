// File: decode.go
// Title: Forest Decoder
// Description: Reads an exported graph back into AST nodes, as a consumer
//              would. Used by the CLI flat dump and by round-trip tests.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package boundary

import (
	fxerror "github.com/msto63/fx/foundation/core/error"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
)

// Decode rebuilds the forest of count nodes at ptr. The graph is left
// untouched and still has to be released.
func Decode(heap Heap, ptr Ptr, count int) ([]ast.Expr, error) {
	if count == 0 {
		return nil, nil
	}
	if ptr == 0 {
		return nil, fxerror.New("null forest with non-zero length").
			WithCode(fxerror.CodeBoundary).
			WithOperation("decode")
	}
	return decodeList(heap, ptr, count)
}

func decodeList(heap Heap, block Ptr, count int) ([]ast.Expr, error) {
	out := make([]ast.Expr, count)
	for i := range out {
		e, err := decodeNode(heap, heap.LoadNode(block, i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeChild(heap Heap, block Ptr) (ast.Expr, error) {
	if block == 0 {
		return nil, fxerror.New("missing child node").
			WithCode(fxerror.CodeBoundary).
			WithOperation("decode")
	}
	return decodeNode(heap, heap.LoadNode(block, 0))
}

func decodeNode(heap Heap, node Node) (ast.Expr, error) {
	loc := diag.At(heap.LoadString(node.File), int(node.Line), int(node.Column))

	switch node.Tag {
	case TagNumber:
		return &ast.NumberLiteral{IsFloat: node.IsFloat, Int: node.Int, Float: node.Float, Loc: loc}, nil

	case TagString:
		return &ast.StringLiteral{Value: heap.LoadString(node.Name), Loc: loc}, nil

	case TagVariable:
		return &ast.VariableRef{Name: heap.LoadString(node.Name), Loc: loc}, nil

	case TagDefinition:
		body, err := decodeChild(heap, node.Left)
		if err != nil {
			return nil, err
		}
		var params []string
		for i := 0; i < node.Len; i++ {
			params = append(params, heap.LoadString(heap.LoadStringAt(node.List, i)))
		}
		return &ast.FunctionDefinition{
			Name:       heap.LoadString(node.Name),
			Params:     params,
			Body:       body,
			ReturnType: node.ReturnType,
			Loc:        loc,
		}, nil

	case TagChain:
		links, err := decodeList(heap, node.List, node.Len)
		if err != nil {
			return nil, err
		}
		return &ast.ChainExpression{Links: nilIfEmpty(links), Loc: loc}, nil

	case TagBinary:
		left, err := decodeChild(heap, node.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeChild(heap, node.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOperation{Rank: node.Rank, Left: left, Right: right, Loc: loc}, nil

	case TagWhen:
		predicate, err := decodeChild(heap, node.Left)
		if err != nil {
			return nil, err
		}
		result, err := decodeChild(heap, node.Right)
		if err != nil {
			return nil, err
		}
		return &ast.WhenExpression{Predicate: predicate, Result: result, Loc: loc}, nil

	case TagCall:
		args, err := decodeList(heap, node.List, node.Len)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: heap.LoadString(node.Name), Args: nilIfEmpty(args), Loc: loc}, nil
	}

	return nil, fxerror.Newf("invalid node tag %d", node.Tag).
		WithCode(fxerror.CodeBoundary).
		WithOperation("decode")
}

func nilIfEmpty(exprs []ast.Expr) []ast.Expr {
	if len(exprs) == 0 {
		return nil
	}
	return exprs
}
