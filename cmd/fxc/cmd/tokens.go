package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/msto63/fx/foundation/fx/parser"
)

var tokensLocations bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the token stream of a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().BoolVarP(&tokensLocations, "locations", "l", false, "one token per line with its location")
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	tokens, err := newCompiler(cfg, logger).Tokens(args[0], src)
	if err != nil {
		printDiagnostic(err)
		return errReported
	}

	if !tokensLocations {
		fmt.Println(parser.FormatTokens(tokens))
		return nil
	}
	for _, tok := range tokens {
		fmt.Printf("%-12s %s\n", color.HiBlackString(tok.Loc.Message()), tok)
	}
	return nil
}
