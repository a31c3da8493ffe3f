// File: args.go
// Title: Boundary Arguments
// Description: Resolves the argument vector handed across the boundary
//              into input and output file names.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package boundary

import (
	"unicode/utf8"

	"github.com/msto63/fx/foundation/fx/diag"
)

// Args are the file names taken from an argument vector
type Args struct {
	Input  string
	Output string
}

// ParseArgs reads argv as the process arguments: argv[0] is the program,
// argv[1] the source file and argv[2] the output file. Extra entries are
// ignored.
func ParseArgs(argv []string) (Args, error) {
	if len(argv) <= 2 {
		return Args{}, diag.Initializing(diag.KindMissingOutputFile)
	}
	for _, arg := range argv[1:3] {
		if arg == "" || !utf8.ValidString(arg) {
			return Args{}, diag.Initializing(diag.KindBadArgument)
		}
	}
	return Args{Input: argv[1], Output: argv[2]}, nil
}
