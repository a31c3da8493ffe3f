package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	fxerror "github.com/msto63/fx/foundation/core/error"
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/boundary"
)

var compileCmd = &cobra.Command{
	Use:   "compile <input> <output>",
	Short: "Compile a source file and write its typed tree",
	Long: `Compiles one fx source file, hands the forest across the boundary
and writes the decoded tree as JSON to the output file.

The arguments follow the boundary convention: the first is the source
file, the second the output file. Missing arguments are reported as an
init diagnostic.`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	parsed, err := boundary.ParseArgs(append([]string{cmd.Root().Name()}, args...))
	if err != nil {
		printDiagnostic(err)
		return errReported
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	result, err := newCompiler(cfg, logger).CompileFile(context.Background(), parsed.Input)
	if err != nil {
		printDiagnostic(err)
		return errReported
	}

	tree, err := roundTrip(result.Forest, logger)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(ast.ViewAll(tree), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	if err := os.WriteFile(parsed.Output, append(data, '\n'), 0644); err != nil {
		return fxerror.Wrap(err, "failed to write output").
			WithCode(fxerror.CodeIO).
			WithDetail("path", parsed.Output)
	}

	printFunctions(result)
	fmt.Printf("%s %s -> %s\n", color.GreenString("ok"), parsed.Input, parsed.Output)
	return nil
}

// roundTrip exports forest through a tracking heap, decodes it the way a
// consumer would and releases it. Leaks and double frees are errors.
func roundTrip(forest []ast.Expr, logger *fxlog.Logger) ([]ast.Expr, error) {
	heap := boundary.NewTrackingHeap()

	exported, err := boundary.Export(heap, forest)
	if err != nil {
		return nil, err
	}
	decoded, err := boundary.Decode(heap, exported.Ptr, exported.Len)
	allocations := heap.Allocations()
	boundary.Release(heap, exported.Ptr, exported.Len)
	if err != nil {
		return nil, fmt.Errorf("failed to decode forest: %w", err)
	}

	if err := heap.Err(); err != nil {
		return nil, err
	}
	if leaks := heap.Leaks(); len(leaks) > 0 {
		return nil, fxerror.Newf("%d allocations leaked", len(leaks)).
			WithCode(fxerror.CodeBoundary).
			WithOperation("release")
	}

	logger.Debug("boundary round trip", fxlog.Fields{
		"expressions": exported.Len,
		"allocations": allocations,
	})
	return decoded, nil
}

func printFunctions(result *fx.Result) {
	for _, name := range result.Order {
		fmt.Printf("  %s: %s\n", color.CyanString(name), result.Functions[name])
	}
}
