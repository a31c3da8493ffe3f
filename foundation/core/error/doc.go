// Package error provides the structured error type used across the fx
// toolchain.
//
// Package: error
// Title: fx Error Handling
// Description: Structured errors with codes, severity, details and the
//              operation that produced them. Compiler diagnostics convert
//              into this type before they are logged or sent over gRPC.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-17 v0.2.0: Reduced to the codes used by the fx front end
//
// Usage:
//
//	import fxerror "github.com/msto63/fx/foundation/core/error"
//
//	err := fxerror.Wrap(ioErr, "failed to read source").
//		WithCode(fxerror.CodeIO).
//		WithDetail("file", path)
//
//	if fxerror.HasCode(err, fxerror.CodeSyntax) {
//		// report as a diagnostic
//	}
package error
