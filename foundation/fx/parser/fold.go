// File: fold.go
// Title: fx Expression Fold
// Description: Folds a collected token run into an expression tree:
//              comma chains, `when` splits, rank-ordered operator
//              attachment and leaf conversion.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial fold implementation

package parser

import (
	"sort"

	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
)

// operator is a ranked symbol at index within its run
type operator struct {
	index int
	rank  ast.Rank
}

// fold converts a non-empty run into one expression
func (p *Parser) fold(run []Token) (ast.Expr, error) {
	if hasComma(run) {
		links, err := p.splitChain(run)
		if err != nil {
			return nil, err
		}
		return &ast.ChainExpression{Links: links, Loc: run[0].Loc}, nil
	}

	ops, when, err := scanOperators(run)
	if err != nil {
		return nil, err
	}
	if when < 0 {
		return p.branch(run, ops)
	}

	if when == 0 || when == len(run)-1 {
		return nil, diag.Parsing(diag.KindDeclaration, run[when].Loc)
	}
	var left, right []operator
	for _, op := range ops {
		if op.index < when {
			left = append(left, op)
		} else {
			right = append(right, operator{index: op.index - when - 1, rank: op.rank})
		}
	}

	predicate, err := p.branch(run[when+1:], right)
	if err != nil {
		return nil, err
	}
	result, err := p.branch(run[:when], left)
	if err != nil {
		return nil, err
	}
	return &ast.WhenExpression{Predicate: predicate, Result: result, Loc: run[when].Loc}, nil
}

func hasComma(run []Token) bool {
	for _, tok := range run {
		if tok.IsSymbol(SymbolComma) {
			return true
		}
	}
	return false
}

// splitChain folds each comma-separated segment of tokens in a fresh
// parser. Groupings and calls are single tokens, so nested commas are
// never split.
func (p *Parser) splitChain(tokens []Token) ([]ast.Expr, error) {
	var (
		links   []ast.Expr
		segment []Token
	)
	flush := func(closing Token) error {
		if len(segment) == 0 {
			return diag.Parsing(diag.KindBadComma, closing.Loc)
		}
		expr, empty, err := p.parseTokens(segment)
		if err != nil {
			return err
		}
		if empty {
			return diag.Parsing(diag.KindBadComma, segment[len(segment)-1].Loc)
		}
		links = append(links, expr)
		segment = nil
		return nil
	}

	var lastComma Token
	for _, tok := range tokens {
		if tok.IsSymbol(SymbolComma) {
			if err := flush(tok); err != nil {
				return nil, err
			}
			lastComma = tok
			continue
		}
		segment = append(segment, tok)
	}
	if err := flush(lastComma); err != nil {
		return nil, err
	}
	return links, nil
}

// scanOperators records every operator with its rank and the index of
// the `when` token, or -1
func scanOperators(run []Token) ([]operator, int, error) {
	var ops []operator
	when := -1
	for i, tok := range run {
		switch tok.Kind {
		case TokenWhen:
			if when >= 0 {
				return nil, 0, diag.Parsing(diag.KindDeclaration, tok.Loc)
			}
			when = i
		case TokenSymbol:
			rank, ok := RankOf(tok.Op)
			if !ok {
				return nil, 0, diag.Parsing(diag.KindUnknownToken, tok.Loc)
			}
			ops = append(ops, operator{index: i, rank: rank})
		}
	}
	return ops, when, nil
}

// branch attaches operators to a running tree in rank order. The first
// operator takes both neighbors. Every later one takes the tree as its
// left operand when it sits right of the previously attached operator
// and as its right operand otherwise; the other operand is its outward
// neighbor.
func (p *Parser) branch(tokens []Token, ops []operator) (ast.Expr, error) {
	if len(ops) == 0 {
		if len(tokens) != 1 {
			return nil, diag.Parsing(diag.KindDeclaration, tokens[1].Loc)
		}
		return p.leaf(tokens[0])
	}

	sort.SliceStable(ops, func(i, j int) bool { return ops[i].rank < ops[j].rank })

	var (
		tree ast.Expr
		last int
	)
	for _, op := range ops {
		node := &ast.BinaryOperation{Rank: op.rank, Loc: tokens[op.index].Loc}

		var err error
		switch {
		case tree == nil:
			if node.Left, err = p.neighbor(tokens, op, -1); err != nil {
				return nil, err
			}
			if node.Right, err = p.neighbor(tokens, op, 1); err != nil {
				return nil, err
			}
		case last < op.index:
			node.Left = tree
			if node.Right, err = p.neighbor(tokens, op, 1); err != nil {
				return nil, err
			}
		default:
			if node.Left, err = p.neighbor(tokens, op, -1); err != nil {
				return nil, err
			}
			node.Right = tree
		}

		tree = node
		last = op.index
	}
	return tree, nil
}

func (p *Parser) neighbor(tokens []Token, op operator, side int) (ast.Expr, error) {
	i := op.index + side
	if i < 0 || i >= len(tokens) || tokens[i].Kind == TokenSymbol {
		return nil, diag.Parsing(diag.KindUnbalancedBinaryExpression, tokens[op.index].Loc)
	}
	return p.leaf(tokens[i])
}

// leaf converts a single non-operator token
func (p *Parser) leaf(tok Token) (ast.Expr, error) {
	switch tok.Kind {
	case TokenIdentifier:
		return &ast.VariableRef{Name: tok.Name, Loc: tok.Loc}, nil

	case TokenNumber:
		return &ast.NumberLiteral{IsFloat: tok.IsFloat, Int: tok.Int, Float: tok.Float, Loc: tok.Loc}, nil

	case TokenString:
		return &ast.StringLiteral{Value: tok.Text, Loc: tok.Loc}, nil

	case TokenGrouping:
		interior := tok.Interior()
		if len(interior) == 0 {
			return nil, diag.Parsing(diag.KindGrouping, tok.Loc)
		}
		expr, empty, err := p.parseTokens(interior)
		if err != nil {
			return nil, err
		}
		if empty {
			return nil, diag.Parsing(diag.KindGrouping, tok.Loc)
		}
		return expr, nil

	case TokenFunctionCall:
		call := &ast.FunctionCall{Name: tok.Name, Loc: tok.Loc}
		if len(tok.Tokens) == 0 {
			return call, nil
		}
		args, err := p.splitChain(tok.Tokens)
		if err != nil {
			return nil, err
		}
		call.Args = args
		return call, nil
	}

	return nil, diag.Parsing(diag.KindDeclaration, tok.Loc)
}
