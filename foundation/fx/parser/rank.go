// File: rank.go
// Title: fx Operator Ranks
// Description: Fixed mapping from symbols to fold ranks. Lower ranks are
//              attached first and so bind tighter.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial rank table

package parser

import "github.com/msto63/fx/foundation/fx/ast"

var basicRanks = map[Symbol]ast.Rank{
	SymbolToPower:     ast.RankToPower,
	SymbolMultiply:    ast.RankMultiply,
	SymbolDivide:      ast.RankDivide,
	SymbolRemainder:   ast.RankRemainder,
	SymbolAdd:         ast.RankAdd,
	SymbolSubtract:    ast.RankSubtract,
	SymbolLessThan:    ast.RankLessThan,
	SymbolGreaterThan: ast.RankGreaterThan,
	SymbolComma:       ast.RankComma,
	SymbolEquals:      ast.RankEquals,
}

type symbolPair struct {
	first, second Symbol
}

var compoundRanks = map[symbolPair]ast.Rank{
	{SymbolLessThan, SymbolEquals}:     ast.RankLessEqual,
	{SymbolGreaterThan, SymbolEquals}:  ast.RankGreaterEqual,
	{SymbolEquals, SymbolEquals}:       ast.RankEqualEqual,
	{SymbolNegate, SymbolEquals}:       ast.RankNotEqual,
	{SymbolAmpersand, SymbolAmpersand}: ast.RankAnd,
	{SymbolPipe, SymbolPipe}:           ast.RankOr,
}

// BasicRank returns the rank of a single symbol. `:`, `&`, `|`, `!` and
// `.` have none.
func BasicRank(s Symbol) (ast.Rank, bool) {
	r, ok := basicRanks[s]
	return r, ok
}

// CompoundRank returns the rank of a two-symbol operator
func CompoundRank(first, second Symbol) (ast.Rank, bool) {
	r, ok := compoundRanks[symbolPair{first, second}]
	return r, ok
}

// RankOf returns the rank of op
func RankOf(op Operator) (ast.Rank, bool) {
	if op.Compound {
		return CompoundRank(op.First, op.Second)
	}
	return BasicRank(op.First)
}
