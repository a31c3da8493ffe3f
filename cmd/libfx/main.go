// Command libfx builds the fx front end as a C shared library:
//
//	go build -buildmode=c-shared -o libfx.so ./cmd/libfx
//
// A consumer calls fx_receive_tokens with its process arguments, walks
// the returned forest and hands it back with fx_drop_all. The output
// file name is released separately with fx_drop_string.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../foundation/fx/boundary
#include <stdlib.h>
#include "fx_node.h"
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unsafe"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx"
	"github.com/msto63/fx/foundation/fx/boundary"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/pkg/core/logging"
)

// logger writes to stderr; FX_LOG_LEVEL raises or lowers it
func logger() *fxlog.Logger {
	level := os.Getenv("FX_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	return logging.NewLogger(logging.LoggerConfig{
		ServiceName: "libfx",
		Level:       level,
		Format:      "console",
	})
}

//export fx_receive_tokens
func fx_receive_tokens(argv **C.char, argc C.int) C.fx_forest {
	args, err := boundary.ParseArgs(goStrings(argv, int(argc)))
	if err != nil {
		fail(err)
	}

	log := logger()
	fxlog.SetDefault(log)
	compiler := fx.New(fx.Options{Logger: log})
	result, err := compiler.CompileFile(context.Background(), args.Input)
	if err != nil {
		fail(err)
	}

	heap := boundary.CHeap{}
	forest, err := boundary.Export(heap, result.Forest)
	if err != nil {
		fail(err)
	}
	out := heap.AllocString(args.Output)

	log.Debug("forest handed out", fxlog.Fields{
		"run_id":      result.RunID,
		"input":       args.Input,
		"output":      args.Output,
		"expressions": forest.Len,
	})

	return C.fx_forest{
		ptr: (*C.fx_node)(unsafe.Pointer(uintptr(forest.Ptr))),
		len: C.size_t(forest.Len),
		out: (*C.char)(unsafe.Pointer(uintptr(out))),
	}
}

//export fx_drop_all
func fx_drop_all(ptr *C.fx_node, length C.size_t) {
	boundary.Release(boundary.CHeap{}, boundary.Ptr(uintptr(unsafe.Pointer(ptr))), int(length))
}

//export fx_drop_string
func fx_drop_string(out *C.char) {
	boundary.ReleaseString(boundary.CHeap{}, boundary.Ptr(uintptr(unsafe.Pointer(out))))
}

func goStrings(argv **C.char, argc int) []string {
	if argv == nil || argc <= 0 {
		return nil
	}
	out := make([]string, argc)
	for i, arg := range unsafe.Slice(argv, argc) {
		out[i] = C.GoString(arg)
	}
	return out
}

// fail prints the diagnostic block and terminates; no partial forest
// ever reaches the consumer
func fail(err error) {
	fmt.Fprint(os.Stderr, report(err))
	os.Exit(1)
}

func report(err error) string {
	var failure *fx.Failure
	if errors.As(err, &failure) {
		return failure.Report()
	}
	if d, ok := diag.AsError(err); ok {
		return d.Report()
	}
	return "\n\nERROR: " + err.Error() + "\n\n"
}

func main() {}
