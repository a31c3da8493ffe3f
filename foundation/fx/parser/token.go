// File: token.go
// Title: fx Token Definitions
// Description: Token kinds, symbols, brackets and the located Token type
//              produced by the lexer.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial token definitions

package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
)

// TokenKind represents the type of a lexical token
type TokenKind int

const (
	TokenExtern TokenKind = iota
	TokenIdentifier
	TokenNumber
	TokenWhen
	TokenLet
	TokenSymbol
	TokenBracket
	TokenNewline
	TokenGrouping
	TokenString
	TokenFunctionCall
)

// String returns a string representation of the token kind
func (k TokenKind) String() string {
	switch k {
	case TokenExtern:
		return "Extern"
	case TokenIdentifier:
		return "Identifier"
	case TokenNumber:
		return "Number"
	case TokenWhen:
		return "When"
	case TokenLet:
		return "Let"
	case TokenSymbol:
		return "Symbol"
	case TokenBracket:
		return "Bracket"
	case TokenNewline:
		return "Newline"
	case TokenGrouping:
		return "Grouping"
	case TokenString:
		return "String"
	case TokenFunctionCall:
		return "FunctionCall"
	default:
		return "Unknown"
	}
}

// Symbol is one punctuation character
type Symbol int

const (
	SymbolMultiply Symbol = iota
	SymbolDivide
	SymbolAdd
	SymbolSubtract
	SymbolRemainder
	SymbolToPower
	SymbolComma
	SymbolEquals
	SymbolColon
	SymbolGreaterThan
	SymbolLessThan
	SymbolAmpersand
	SymbolPipe
	SymbolNegate
	SymbolDot
)

// symbolChars is indexed by Symbol
const symbolChars = "*/+-%^,=:><&|!."

// Symbols lists every basic symbol
func Symbols() []Symbol {
	out := make([]Symbol, len(symbolChars))
	for i := range out {
		out[i] = Symbol(i)
	}
	return out
}

// String returns the symbol character
func (s Symbol) String() string {
	if s >= 0 && int(s) < len(symbolChars) {
		return symbolChars[s : s+1]
	}
	return "?"
}

func lookupSymbol(ch byte) (Symbol, bool) {
	if i := strings.IndexByte(symbolChars, ch); i >= 0 {
		return Symbol(i), true
	}
	return 0, false
}

// Operator is a basic symbol or a compound of two symbols
type Operator struct {
	First    Symbol
	Second   Symbol
	Compound bool
}

// Basic returns the operator for a single symbol
func Basic(s Symbol) Operator {
	return Operator{First: s}
}

// Compound returns the operator for two adjacent symbols
func Compound(first, second Symbol) Operator {
	return Operator{First: first, Second: second, Compound: true}
}

// Is reports whether the operator is the basic symbol s
func (o Operator) Is(s Symbol) bool {
	return !o.Compound && o.First == s
}

// String returns the operator spelling
func (o Operator) String() string {
	if o.Compound {
		return o.First.String() + o.Second.String()
	}
	return o.First.String()
}

// BracketKind distinguishes () from []
type BracketKind int

const (
	Parens BracketKind = iota
	Square
)

// Bracket is a wall token
type Bracket struct {
	Kind BracketKind
	Open bool
}

// String returns the bracket character
func (b Bracket) String() string {
	switch {
	case b.Kind == Parens && b.Open:
		return "("
	case b.Kind == Parens:
		return ")"
	case b.Open:
		return "["
	default:
		return "]"
	}
}

// Token is a located lexical unit. Which payload fields are set depends on
// Kind: Name for identifiers and calls, Int/Float/IsFloat for numbers, Text
// for strings, Op for symbols, Bracket for walls, Tokens for groupings
// (walls included) and calls (walls stripped).
type Token struct {
	Kind    TokenKind
	Loc     diag.Location
	Name    string
	Text    string
	Int     int64
	Float   float64
	IsFloat bool
	Op      Operator
	Bracket Bracket
	Tokens  []Token
}

// String renders the token for dumps and test failures
func (t Token) String() string {
	switch t.Kind {
	case TokenIdentifier:
		return "Identifier(" + t.Name + ")"
	case TokenNumber:
		if t.IsFloat {
			return "Number(" + ast.FormatFloat(t.Float) + ")"
		}
		return "Number(" + strconv.FormatInt(t.Int, 10) + ")"
	case TokenSymbol:
		return "Symbol(" + t.Op.String() + ")"
	case TokenBracket:
		return "Bracket(" + t.Bracket.String() + ")"
	case TokenString:
		return fmt.Sprintf("String(%q)", t.Text)
	case TokenGrouping:
		return "Grouping" + joinTokens(t.Tokens)
	case TokenFunctionCall:
		return "FunctionCall(" + t.Name + ")" + joinTokens(t.Tokens)
	default:
		return t.Kind.String()
	}
}

// IsSymbol reports whether t is the basic symbol s
func (t Token) IsSymbol(s Symbol) bool {
	return t.Kind == TokenSymbol && t.Op.Is(s)
}

// IsWall reports whether t is a bracket of kind with the given openness
func (t Token) IsWall(kind BracketKind, open bool) bool {
	return t.Kind == TokenBracket && t.Bracket.Kind == kind && t.Bracket.Open == open
}

// Interior returns a grouping's tokens without its walls
func (t Token) Interior() []Token {
	if t.Kind != TokenGrouping || len(t.Tokens) < 2 {
		return nil
	}
	return t.Tokens[1 : len(t.Tokens)-1]
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatTokens renders a token stream one token per line
func FormatTokens(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		fmt.Fprintf(&b, "%-14s %s\n", t.Loc.Message(), t)
	}
	return b.String()
}
