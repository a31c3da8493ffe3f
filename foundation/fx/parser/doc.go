// File: doc.go
// Title: fx Parser Package Documentation
// Description: Lexer and parser of the fx expression language.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial lexer and parser

/*
Package parser turns fx source into a located AST.

The lexer produces a flat token stream in which every bracketed run is
already collapsed into a single Grouping token and every identifier
directly followed by a grouping is rewritten into a FunctionCall token
(except the name of a definition). Newlines survive as single Newline
tokens because the parser uses them to decide where an expression ends.

The parser walks the stream with a saturating cursor. A statement is
either a definition (`let name(params) body` or `let name = body`) or a
floating expression. Expressions are folded by operator rank: operators
are sorted by rank and attached one after another to a running tree, the
side being chosen by comparing the operator position with the position
of the previously attached one. This is not precedence climbing:
`a*b + c*d` folds to `(+ b (* (* a b) d))`. See fold.go.

  • Lexer with newline collapsing, groupings and call rewriting
  • Rank table for basic and compound symbols
  • Statement dispatch, definitions and expression folding
  • Return-type inference of each definition before registration
*/
package parser
