// File: location.go
// Title: Source Locations
// Description: A 0-based line/column cursor over one source file. The lexer
//              advances it per byte and may rewind it by one column, which
//              crosses back over a line break when needed.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package diag

import "fmt"

// InternalFile is the file name of locations that do not come from source
const InternalFile = "internal"

// Location is a position in a source file. Line and Column are 0-based.
type Location struct {
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	File   string `json:"file" yaml:"file"`

	// column of the line break that ended the previous line
	lastLineWidth int
}

// NewLocation returns the start of file
func NewLocation(file string) Location {
	return Location{File: file}
}

// At returns a fixed location, mostly for tests and decoded trees
func At(file string, line, column int) Location {
	return Location{Line: line, Column: column, File: file}
}

// Internal returns the location used for diagnostics raised outside any source
func Internal() Location {
	return Location{File: InternalFile}
}

// NextColumn advances by one character on the current line
func (l *Location) NextColumn() {
	l.Column++
}

// NextLine moves to the start of the next line
func (l *Location) NextLine() {
	l.lastLineWidth = l.Column
	l.Line++
	l.Column = 0
}

// PreviousColumn rewinds one character. At the start of a line it returns
// to the line break of the previous line. Rewinding past 0:0 is a no-op.
func (l *Location) PreviousColumn() {
	if l.Column > 0 {
		l.Column--
		return
	}
	if l.Line == 0 {
		return
	}
	l.Line--
	l.Column = l.lastLineWidth
}

// Message renders the location as "@file:line:column", 1-based
func (l Location) Message() string {
	return fmt.Sprintf("@%s:%d:%d", l.File, l.Line+1, l.Column+1)
}

// String implements fmt.Stringer
func (l Location) String() string {
	return l.Message()
}
