package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/pkg/core/config"
	"github.com/msto63/fx/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fxc",
	Short: "fx - expression language front end",
	Long: `fxc tokenizes, parses and type checks fx source files.

Commands:
  compile  - compile one file and write its typed tree
  check    - type check files and report diagnostics
  tokens   - print the token stream of a file
  dump     - print the typed tree as JSON or YAML
  serve    - run the gRPC frontend service
  cache    - inspect the build cache`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $FX_CONFIG or ./fx.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// errReported marks failures whose diagnostics were already printed
var errReported = errors.New("failed")

// loadConfig reads --config, then $FX_CONFIG and the default paths.
// A missing file is not an error; defaults apply.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if errors.Is(err, config.ErrNotFound) && cfgFile == "" {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and installs the default logger
func setup() (*config.Config, *fxlog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logCfg := logging.FromConfig("fxc", cfg.Logging)
	if verbose {
		logCfg.Level = "debug"
	} else if cfg.Logging.Level == "info" {
		// the CLI prints its own results; info logs are noise
		logCfg.Level = "warn"
	}
	logger := logging.NewLogger(logCfg)
	fxlog.SetDefault(logger)
	return cfg, logger, nil
}

func newCompiler(cfg *config.Config, logger *fxlog.Logger) *fx.Compiler {
	return fx.New(fx.Options{
		Logger:         logger,
		MaxSourceBytes: int(cfg.Compiler.MaxSourceBytes),
	})
}

// printDiagnostic prints a compile failure the way the boundary does,
// with the error line highlighted
func printDiagnostic(err error) {
	var failure *fx.Failure
	if errors.As(err, &failure) {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, failure.Report())
		return
	}
	if d, ok := diag.AsError(err); ok {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, d.Report())
		return
	}
	printError(err)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
}
