package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/internal/buildcache"
	"github.com/msto63/fx/pkg/core/cache"
	"github.com/msto63/fx/pkg/core/config"
)

var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Type check source files",
	Long: `Parses and type checks every file and prints the inferred return
types. Directories are searched for files with the configured extension.
With the build cache enabled, unchanged files are served from the cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

var checkRemote string

func init() {
	checkCmd.Flags().StringVar(&checkRemote, "remote", "", "check through a frontend at host:port")
	rootCmd.AddCommand(checkCmd)
}

// unitCompiler compiles one source unit locally or through a frontend
type unitCompiler interface {
	Compile(ctx context.Context, file string, src []byte) (*buildcache.Output, error)
	Close() error
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	files, err := expandSources(args, cfg.Compiler.FileExtension)
	if err != nil {
		return err
	}

	var compiler unitCompiler
	if checkRemote != "" {
		compiler, err = newRemoteCompiler(checkRemote, cfg, logger)
	} else {
		compiler, err = newCachingCompiler(cfg, logger)
	}
	if err != nil {
		return err
	}
	defer compiler.Close()

	ctx := context.Background()
	var failed *multierror.Error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			failed = multierror.Append(failed, err)
			printError(err)
			continue
		}

		out, err := compiler.Compile(ctx, file, src)
		if err != nil {
			failed = multierror.Append(failed, fmt.Errorf("%s: %w", file, err))
			printDiagnostic(err)
			continue
		}

		status := color.GreenString("ok")
		if out.Cached {
			status = color.GreenString("ok (cached)")
		}
		fmt.Printf("%s %s\n", status, file)
		for _, f := range out.Functions {
			fmt.Printf("  %s: %s\n", color.CyanString(f.Name), f.ReturnType)
		}
	}

	if failed != nil {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed.Len(), len(files))
		return errReported
	}
	return nil
}

// expandSources replaces directories by the source files below them
func expandSources(args []string, ext string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ext {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	return files, nil
}

// newCachingCompiler opens the SQLite store when the cache is enabled
// and falls back to memory otherwise
func newCachingCompiler(cfg *config.Config, logger *fxlog.Logger) (*buildcache.Compiler, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return buildcache.NewCompiler(buildcache.Options{
		Compiler: newCompiler(cfg, logger),
		Store:    store,
		Memory:   cache.NewSourceCache[*buildcache.Entry](sourcesConfig(cfg)),
		Logger:   logger,
	}), nil
}

func sourcesConfig(cfg *config.Config) cache.SourcesConfig {
	return cache.SourcesConfig{TTL: cfg.Cache.TTL.Duration, MaxEntries: cfg.Cache.MaxEntries}
}

func openStore(cfg *config.Config) (buildcache.Store, error) {
	if !cfg.Cache.Enabled {
		return buildcache.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := buildcache.NewSQLiteStore(buildcache.SQLiteConfig{
		Path:       cfg.Cache.Path,
		MaxEntries: cfg.Cache.MaxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open build cache: %w", err)
	}
	return store, nil
}
