package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/msto63/fx/foundation/fx/ast"
)

var (
	dumpFormat string
	dumpFlat   bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the typed tree of a source file",
	Long: `Prints the typed tree of a source file as JSON or YAML.

With --flat the tree is first exported to the flat node layout, decoded
back and released, so the output shows what a consumer of the shared
library sees.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "output format (json, yaml)")
	dumpCmd.Flags().BoolVar(&dumpFlat, "flat", false, "round trip through the boundary layout")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	result, err := newCompiler(cfg, logger).CompileFile(context.Background(), args[0])
	if err != nil {
		printDiagnostic(err)
		return errReported
	}

	forest := result.Forest
	if dumpFlat {
		if forest, err = roundTrip(forest, logger); err != nil {
			return err
		}
	}

	data, err := encodeTree(ast.ViewAll(forest), dumpFormat)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func encodeTree(view []interface{}, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(view)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
