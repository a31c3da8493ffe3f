// File: cursor.go
// Title: fx Token Cursor
// Description: Saturating index over a token slice with relative seeks,
//              used for lookahead and lookbehind without consuming.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package parser

// cursor points at the next unread token. Seeking below zero clamps to
// zero; seeking past the end is allowed and reads as end of input.
type cursor struct {
	tokens []Token
	index  int
}

func newCursor(tokens []Token) *cursor {
	return &cursor{tokens: tokens}
}

// seek moves the index by offset, saturating at zero
func (c *cursor) seek(offset int) {
	c.index += offset
	if c.index < 0 {
		c.index = 0
	}
}

func (c *cursor) forward() { c.seek(1) }
func (c *cursor) back()    { c.seek(-1) }

// next consumes and returns the token under the cursor
func (c *cursor) next() (Token, bool) {
	tok, ok := c.peek(0)
	if ok {
		c.forward()
	}
	return tok, ok
}

// peek returns the token offset positions from the cursor without moving
func (c *cursor) peek(offset int) (Token, bool) {
	i := c.index + offset
	if i < 0 || i >= len(c.tokens) {
		return Token{}, false
	}
	return c.tokens[i], true
}

// lookAhead consumes newlines and returns the first other token
func (c *cursor) lookAhead() (Token, bool) {
	for {
		tok, ok := c.next()
		if !ok || tok.Kind != TokenNewline {
			return tok, ok
		}
	}
}

// lookBehind returns the last non-newline token before offset without moving
func (c *cursor) lookBehind(offset int) (Token, bool) {
	for i := c.index + offset - 1; i >= 0; i-- {
		if i >= len(c.tokens) {
			continue
		}
		if c.tokens[i].Kind != TokenNewline {
			return c.tokens[i], true
		}
	}
	return Token{}, false
}

// last returns the most recently consumed token
func (c *cursor) last() (Token, bool) {
	return c.peek(-1)
}
