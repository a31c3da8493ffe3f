// File: view.go
// Title: fx AST Map View
// Description: Converts expressions into plain maps of strings, numbers,
//              booleans and slices for JSON/YAML dumps and structpb payloads.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package ast

// View renders e as a map. Values are limited to the types accepted by
// structpb.NewStruct.
func View(e Expr) map[string]interface{} {
	loc := e.Location()
	m := map[string]interface{}{
		"location": loc.Message(),
	}

	switch n := e.(type) {
	case *NumberLiteral:
		m["kind"] = "NumberLiteral"
		m["is_float"] = n.IsFloat
		if n.IsFloat {
			m["value"] = n.Float
		} else {
			m["value"] = n.Int
		}
	case *StringLiteral:
		m["kind"] = "StringLiteral"
		m["value"] = n.Value
	case *FunctionDefinition:
		m["kind"] = "FunctionDefinition"
		m["name"] = n.Name
		params := make([]interface{}, len(n.Params))
		for i, p := range n.Params {
			params[i] = p
		}
		m["params"] = params
		m["return_type"] = n.ReturnType.String()
		m["body"] = View(n.Body)
	case *ChainExpression:
		m["kind"] = "ChainExpression"
		m["links"] = viewList(n.Links)
	case *BinaryOperation:
		m["kind"] = "BinaryOperation"
		m["op"] = n.Rank.String()
		m["rank"] = int(n.Rank)
		m["left"] = View(n.Left)
		m["right"] = View(n.Right)
	case *WhenExpression:
		m["kind"] = "WhenExpression"
		m["predicate"] = View(n.Predicate)
		m["result"] = View(n.Result)
	case *FunctionCall:
		m["kind"] = "FunctionCall"
		m["name"] = n.Name
		m["args"] = viewList(n.Args)
	case *VariableRef:
		m["kind"] = "VariableRef"
		m["name"] = n.Name
	}
	return m
}

// ViewAll renders a forest
func ViewAll(exprs []Expr) []interface{} {
	return viewList(exprs)
}

func viewList(exprs []Expr) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = View(e)
	}
	return out
}
