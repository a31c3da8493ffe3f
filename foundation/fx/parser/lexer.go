// File: lexer.go
// Title: fx Lexical Analyzer
// Description: Converts fully buffered fx source into located tokens.
//              Bracketed runs are collected into Grouping tokens while
//              scanning; a post-pass rewrites identifier/grouping pairs
//              into FunctionCall tokens.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial lexer implementation

package parser

import (
	"strconv"
	"strings"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/diag"
)

// Lexer scans one source buffer
type Lexer struct {
	src    []byte
	pos    int
	loc    diag.Location
	logger *fxlog.Logger
}

// NewLexer creates a lexer over src. file names the source in locations.
func NewLexer(file string, src []byte) *Lexer {
	return &Lexer{
		src:    src,
		loc:    diag.NewLocation(file),
		logger: fxlog.GetDefault().WithField("component", "fx-lexer"),
	}
}

// WithLogger replaces the lexer's logger
func (l *Lexer) WithLogger(logger *fxlog.Logger) *Lexer {
	if logger != nil {
		l.logger = logger.WithField("component", "fx-lexer")
	}
	return l
}

// Location returns the position after the last consumed byte
func (l *Lexer) Location() diag.Location {
	return l.loc
}

// Tokenize scans the whole source. On error no tokens are returned.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, ok, err := l.NextToken()
		if err != nil {
			l.logger.Debug("tokenizing failed", fxlog.Fields{
				"file":  l.loc.File,
				"error": err.Error(),
			})
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}

	tokens = rewriteCalls(tokens)
	l.logger.Trace("tokenized", fxlog.Fields{
		"file":   l.loc.File,
		"tokens": len(tokens),
		"bytes":  len(l.src),
	})
	return tokens, nil
}

// NextToken returns the next top-level token. ok is false at end of input.
// Call rewriting is not applied; use Tokenize for a parser-ready stream.
func (l *Lexer) NextToken() (Token, bool, error) {
	tok, ok, err := l.scan()
	if err != nil || !ok {
		return tok, ok, err
	}
	if tok.Kind == TokenBracket && !tok.Bracket.Open {
		return Token{}, false, diag.Parsing(diag.KindGrouping, tok.Loc)
	}
	return tok, true, nil
}

func (l *Lexer) read() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.loc.NextLine()
	} else {
		l.loc.NextColumn()
	}
	return ch, true
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) unread() {
	if l.pos == 0 {
		return
	}
	l.pos--
	l.loc.PreviousColumn()
}

// scan returns the next raw token. Closing walls come back as Bracket
// tokens so that collectGrouping can match them.
func (l *Lexer) scan() (Token, bool, error) {
	for {
		start := l.loc
		ch, ok := l.read()
		if !ok {
			return Token{}, false, nil
		}

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			continue

		case ch == '\n':
			l.skipNewlines()
			return Token{Kind: TokenNewline, Loc: start}, true, nil

		case ch == '#':
			l.skipComment()
			continue

		case isIdentStart(ch):
			l.unread()
			return l.scanIdentifier(start), true, nil

		case isDigit(ch) || ch == '.':
			l.unread()
			tok, isNumber, err := l.scanNumber(start)
			if err != nil {
				return Token{}, false, err
			}
			if isNumber {
				return tok, true, nil
			}
			l.read()
			return l.scanSymbol(start, SymbolDot), true, nil

		case ch == '"':
			tok, err := l.scanString(start)
			return tok, err == nil, err

		case ch == '(' || ch == '[':
			kind := Parens
			if ch == '[' {
				kind = Square
			}
			open := Token{Kind: TokenBracket, Loc: start, Bracket: Bracket{Kind: kind, Open: true}}
			tok, err := l.collectGrouping(open)
			return tok, err == nil, err

		case ch == ')' || ch == ']':
			kind := Parens
			if ch == ']' {
				kind = Square
			}
			return Token{Kind: TokenBracket, Loc: start, Bracket: Bracket{Kind: kind}}, true, nil
		}

		if sym, ok := lookupSymbol(ch); ok {
			return l.scanSymbol(start, sym), true, nil
		}
		return Token{}, false, diag.Parsing(diag.KindUnknownToken, start)
	}
}

// skipNewlines absorbs blank lines, indentation and comments following a
// newline so that the whole run yields one Newline token.
func (l *Lexer) skipNewlines() {
	for {
		ch, ok := l.peek()
		if !ok {
			return
		}
		switch ch {
		case '\n', ' ', '\t', '\r':
			l.read()
		case '#':
			l.skipComment()
		default:
			return
		}
	}
}

// skipComment consumes up to, not including, the line break
func (l *Lexer) skipComment() {
	for {
		ch, ok := l.peek()
		if !ok || ch == '\n' {
			return
		}
		l.read()
	}
}

func (l *Lexer) scanIdentifier(start diag.Location) Token {
	var b strings.Builder
	for {
		ch, ok := l.peek()
		if !ok || !isIdentPart(ch) {
			break
		}
		l.read()
		b.WriteByte(ch)
	}

	name := b.String()
	switch name {
	case "extern":
		return Token{Kind: TokenExtern, Loc: start}
	case "when":
		return Token{Kind: TokenWhen, Loc: start}
	case "let":
		return Token{Kind: TokenLet, Loc: start}
	}
	return Token{Kind: TokenIdentifier, Loc: start, Name: name}
}

// scanNumber reads a digit/dot run. A run without digits is rewound and
// reported as not a number so the caller can lex it as a symbol.
func (l *Lexer) scanNumber(start diag.Location) (Token, bool, error) {
	begin := l.pos
	digits := false
	for {
		ch, ok := l.peek()
		if !ok || !(isDigit(ch) || ch == '.') {
			break
		}
		digits = digits || isDigit(ch)
		l.read()
	}

	text := string(l.src[begin:l.pos])
	if !digits {
		for l.pos > begin {
			l.unread()
		}
		return Token{}, false, nil
	}

	tok := Token{Kind: TokenNumber, Loc: start}
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, false, diag.Parsing(diag.KindRange, start)
		}
		tok.IsFloat = true
		tok.Float = f
		return tok, true, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, false, diag.Parsing(diag.KindRange, start)
	}
	tok.Int = n
	return tok, true, nil
}

func (l *Lexer) scanString(start diag.Location) (Token, error) {
	begin := l.pos
	for {
		ch, ok := l.read()
		if !ok {
			return Token{}, diag.Parsing(diag.KindEOF, l.loc)
		}
		if ch == '"' {
			return Token{Kind: TokenString, Loc: start, Text: string(l.src[begin : l.pos-1])}, nil
		}
	}
}

// scanSymbol pairs first with a directly following symbol character
func (l *Lexer) scanSymbol(start diag.Location, first Symbol) Token {
	ch, ok := l.read()
	if ok {
		if second, isSym := lookupSymbol(ch); isSym {
			return Token{Kind: TokenSymbol, Loc: start, Op: Compound(first, second)}
		}
		l.unread()
	}
	return Token{Kind: TokenSymbol, Loc: start, Op: Basic(first)}
}

// collectGrouping gathers tokens up to the closing wall matching open.
// Newlines inside a grouping carry no meaning and are dropped.
func (l *Lexer) collectGrouping(open Token) (Token, error) {
	tokens := []Token{open}
	for {
		tok, ok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		if !ok {
			return Token{}, diag.Parsing(diag.KindEOF, l.loc)
		}

		switch {
		case tok.Kind == TokenNewline:
			continue
		case tok.Kind == TokenBracket && !tok.Bracket.Open:
			if tok.Bracket.Kind != open.Bracket.Kind {
				return Token{}, diag.Parsing(diag.KindGrouping, tok.Loc)
			}
			tokens = append(tokens, tok)
			return Token{Kind: TokenGrouping, Loc: open.Loc, Tokens: tokens}, nil
		default:
			tokens = append(tokens, tok)
		}
	}
}

// rewriteCalls folds Identifier+Grouping pairs into FunctionCall tokens,
// descending into groupings. The name of a definition (an identifier
// right after `let`) is left alone.
func rewriteCalls(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind == TokenGrouping {
			tok.Tokens = rewriteGrouping(tok.Tokens)
		}

		afterLet := len(out) > 0 && out[len(out)-1].Kind == TokenLet
		if tok.Kind == TokenIdentifier && !afterLet && i+1 < len(tokens) && tokens[i+1].Kind == TokenGrouping {
			args := tokens[i+1]
			out = append(out, Token{
				Kind:   TokenFunctionCall,
				Loc:    tok.Loc,
				Name:   tok.Name,
				Tokens: rewriteCalls(args.Interior()),
			})
			i++
			continue
		}
		out = append(out, tok)
	}
	return out
}

func rewriteGrouping(tokens []Token) []Token {
	if len(tokens) < 2 {
		return tokens
	}
	inner := rewriteCalls(tokens[1 : len(tokens)-1])
	out := make([]Token, 0, len(inner)+2)
	out = append(out, tokens[0])
	out = append(out, inner...)
	return append(out, tokens[len(tokens)-1])
}

// Tokenize is a convenience wrapper around NewLexer(file, src).Tokenize()
func Tokenize(file string, src []byte) ([]Token, error) {
	return NewLexer(file, src).Tokenize()
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '$'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
