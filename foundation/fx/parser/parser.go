// File: parser.go
// Title: fx Statement Parser
// Description: Walks the token stream, dispatches definitions and floating
//              expressions and collects the token run of each expression
//              using newline continuation rules. Every definition body is
//              type-inferred before it is added to the function registry.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial parser implementation

package parser

import (
	fxerror "github.com/msto63/fx/foundation/core/error"
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/foundation/fx/infer"
	"github.com/msto63/fx/foundation/fx/registry"
)

// Parser turns tokens into a forest of top-level expressions
type Parser struct {
	cur      *cursor
	logger   *fxlog.Logger
	registry *registry.Registry
	inferrer *infer.Inferrer
	options  Options
}

// Options configures parser behavior
type Options struct {
	Logger *fxlog.Logger

	// Registry receives every accepted definition. A fresh registry is
	// created when nil.
	Registry *registry.Registry

	// MaxSourceBytes rejects larger sources in Parse; 0 disables the check
	MaxSourceBytes int
}

// New creates a new fx parser with the given options
func New(opts Options) (*Parser, error) {
	if opts.Logger == nil {
		opts.Logger = fxlog.GetDefault()
	}
	if opts.MaxSourceBytes < 0 {
		return nil, fxerror.Newf("invalid max source size %d", opts.MaxSourceBytes).
			WithCode(fxerror.CodeConfigError).
			WithOperation("parser.New")
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(registry.Options{Logger: opts.Logger})
	}

	return &Parser{
		cur:      newCursor(nil),
		logger:   opts.Logger.WithField("component", "fx-parser"),
		registry: opts.Registry,
		inferrer: infer.New(opts.Registry, opts.Logger),
		options:  opts,
	}, nil
}

// Registry returns the function registry filled by this parser
func (p *Parser) Registry() *registry.Registry {
	return p.registry
}

// Parse tokenizes and parses one source unit
func (p *Parser) Parse(file string, src []byte) ([]ast.Expr, error) {
	if p.options.MaxSourceBytes > 0 && len(src) > p.options.MaxSourceBytes {
		return nil, fxerror.Newf("source exceeds maximum size: %d > %d", len(src), p.options.MaxSourceBytes).
			WithCode(fxerror.CodeInvalidInput).
			WithDetail("file", file).
			WithOperation("parse")
	}

	tokens, err := NewLexer(file, src).WithLogger(p.logger).Tokenize()
	if err != nil {
		return nil, err
	}
	return p.Run(tokens)
}

// Run parses a token stream produced by Tokenize. Any error aborts the
// whole run; no partial forest is returned.
func (p *Parser) Run(tokens []Token) ([]ast.Expr, error) {
	p.cur = newCursor(tokens)

	p.logger.Debug("starting fx parsing", fxlog.Fields{"tokens": len(tokens)})

	var forest []ast.Expr
	for {
		tok, ok := p.cur.next()
		if !ok {
			break
		}

		var (
			expr ast.Expr
			err  error
		)
		switch tok.Kind {
		case TokenLet:
			expr, err = p.parseDefinition(tok)
		case TokenIdentifier, TokenExtern, TokenGrouping, TokenFunctionCall:
			p.cur.back()
			expr, err = p.parseExpressionOrErr()
		default:
			continue
		}

		if err != nil {
			p.logger.Warn("fx parsing failed", fxlog.Fields{
				"error":       err.Error(),
				"expressions": len(forest),
			})
			return nil, err
		}
		forest = append(forest, expr)
	}

	p.logger.Debug("fx parsing completed", fxlog.Fields{
		"expressions": len(forest),
		"functions":   p.registry.Len(),
	})
	return forest, nil
}

// ParseExpression folds tokens as a single expression. The whole slice
// must belong to the expression.
func (p *Parser) ParseExpression(tokens []Token) (ast.Expr, error) {
	if len(tokens) == 0 {
		return nil, diag.Parsing(diag.KindDeclaration, diag.Internal())
	}
	expr, empty, err := p.parseTokens(tokens)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, diag.Parsing(diag.KindDeclaration, tokens[0].Loc)
	}
	return expr, nil
}

// parseDefinition handles `let name(params) body` and `let name = body`
func (p *Parser) parseDefinition(let Token) (ast.Expr, error) {
	name, err := p.expectIdentifier(let)
	if err != nil {
		return nil, err
	}

	next, ok := p.cur.next()
	if !ok {
		return nil, diag.Parsing(diag.KindEOF, name.Loc)
	}

	var params []string
	switch {
	case next.Kind == TokenGrouping:
		if params, err = parseParams(next); err != nil {
			return nil, err
		}
	case next.IsSymbol(SymbolEquals):
		// leave the `=` to the body; collection drops it
		p.cur.back()
	default:
		return nil, diag.Parsing(diag.KindDeclaration, next.Loc)
	}

	body, err := p.parseExpressionOrErr()
	if err != nil {
		return nil, err
	}

	rt, err := p.inferrer.ReturnType(body)
	if err != nil {
		return nil, err
	}
	p.registry.Register(name.Name, rt)

	return &ast.FunctionDefinition{
		Name:       name.Name,
		Params:     params,
		Body:       body,
		ReturnType: rt,
		Loc:        let.Loc,
	}, nil
}

func (p *Parser) expectIdentifier(after Token) (Token, error) {
	tok, ok := p.cur.lookAhead()
	if !ok {
		return Token{}, diag.Parsing(diag.KindEOF, after.Loc)
	}
	if tok.Kind != TokenIdentifier {
		return Token{}, diag.Parsing(diag.KindIdentifier, tok.Loc)
	}
	return tok, nil
}

// parseParams reads `(a, b, c)`. `()` declares no parameters.
func parseParams(group Token) ([]string, error) {
	closing := group.Tokens[len(group.Tokens)-1]
	if closing.Bracket.Kind != Parens {
		return nil, diag.Parsing(diag.KindGrouping, group.Loc)
	}

	interior := group.Interior()
	if len(interior) == 0 {
		return nil, nil
	}

	params := make([]string, 0, (len(interior)+1)/2)
	for i := 0; i < len(interior); i += 2 {
		if interior[i].Kind != TokenIdentifier {
			return nil, diag.Parsing(diag.KindIdentifier, interior[i].Loc)
		}
		params = append(params, interior[i].Name)

		if i+1 == len(interior) {
			return params, nil
		}
		if !interior[i+1].IsSymbol(SymbolComma) {
			return nil, diag.Parsing(diag.KindIdentifier, interior[i+1].Loc)
		}
		if i+2 == len(interior) {
			return nil, diag.Parsing(diag.KindIdentifier, closing.Loc)
		}
	}
	return params, nil
}

func (p *Parser) parseExpressionOrErr() (ast.Expr, error) {
	run := p.collectExpression()
	if len(run) == 0 {
		return nil, diag.Parsing(diag.KindDeclaration, p.stopLocation())
	}
	return p.fold(run)
}

// stopLocation is the token collection stopped at, or the last one read
func (p *Parser) stopLocation() diag.Location {
	if tok, ok := p.cur.peek(0); ok {
		return tok.Loc
	}
	if tok, ok := p.cur.last(); ok {
		return tok.Loc
	}
	return diag.Internal()
}

// collectExpression gathers the run of tokens forming one expression.
// A newline ends the run unless the tokens around it show that the
// expression goes on. The token that stops collection is not consumed.
func (p *Parser) collectExpression() []Token {
	var run []Token
	for {
		tok, ok := p.cur.next()
		if !ok {
			return run
		}

		switch {
		case tok.Kind == TokenNewline:
			next, ok := p.cur.peek(0)
			if !ok {
				return run
			}
			behind, _ := p.cur.lookBehind(-1)
			if !continuesAfterNewline(behind, next) {
				return run
			}

		case collectable(tok.Kind):
			if len(run) == 0 && tok.IsSymbol(SymbolEquals) {
				continue
			}
			run = append(run, tok)

		default:
			p.cur.back()
			return run
		}
	}
}

// continuesAfterNewline decides whether next, read after a newline,
// still belongs to the expression that ended with behind
func continuesAfterNewline(behind, next Token) bool {
	switch next.Kind {
	case TokenLet:
		return false
	case TokenWhen:
		return true
	case TokenSymbol:
		return behind.Kind == TokenIdentifier || behind.Kind == TokenGrouping
	default:
		return behind.Kind == TokenSymbol
	}
}

func collectable(kind TokenKind) bool {
	switch kind {
	case TokenSymbol, TokenIdentifier, TokenNumber, TokenGrouping,
		TokenWhen, TokenString, TokenFunctionCall:
		return true
	}
	return false
}

// sub returns a parser over tokens sharing this parser's registry. The
// enclosing cursor is never touched by the sub-parser.
func (p *Parser) sub(tokens []Token) *Parser {
	return &Parser{
		cur:      newCursor(tokens),
		logger:   p.logger,
		registry: p.registry,
		inferrer: p.inferrer,
		options:  p.options,
	}
}

// parseTokens folds a complete sub-run in a fresh parser. empty reports
// a run that held nothing but a leading `=`.
func (p *Parser) parseTokens(tokens []Token) (expr ast.Expr, empty bool, err error) {
	sub := p.sub(tokens)
	run := sub.collectExpression()
	if rest, ok := sub.cur.peek(0); ok {
		return nil, false, diag.Parsing(diag.KindDeclaration, rest.Loc)
	}
	if len(run) == 0 {
		return nil, true, nil
	}
	expr, err = sub.fold(run)
	return expr, false, err
}
