package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/fx/internal/buildcache"
)

var (
	pruneOlderThan time.Duration
	pruneVacuum    bool
	runsLimit      int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the build cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show build cache statistics",
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries and runs",
	RunE:  runCachePrune,
}

var cacheRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent compile runs",
	RunE:  runCacheRuns,
}

func init() {
	cachePruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "age limit (default: cache.ttl)")
	cachePruneCmd.Flags().BoolVar(&pruneVacuum, "vacuum", false, "compact the database afterwards")
	cacheRunsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs")

	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheRunsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openSQLiteStore() (*buildcache.SQLiteStore, time.Duration, error) {
	cfg, _, err := setup()
	if err != nil {
		return nil, 0, err
	}
	store, err := buildcache.NewSQLiteStore(buildcache.SQLiteConfig{
		Path:       cfg.Cache.Path,
		MaxEntries: cfg.Cache.MaxEntries,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open build cache %s: %w", cfg.Cache.Path, err)
	}
	return store, cfg.Cache.TTL.Duration, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, _, err := openSQLiteStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Build cache")
	fmt.Println("===========")
	for _, k := range keys {
		fmt.Printf("  %-18s %v\n", k, stats[k])
	}
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	store, ttl, err := openSQLiteStore()
	if err != nil {
		return err
	}
	defer store.Close()

	olderThan := pruneOlderThan
	if olderThan == 0 {
		olderThan = ttl
	}

	ctx := context.Background()
	removed, err := store.Prune(ctx, olderThan)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d rows older than %s\n", removed, olderThan)

	if pruneVacuum {
		if err := store.Vacuum(ctx); err != nil {
			return err
		}
		fmt.Println("Database compacted")
	}
	return nil
}

func runCacheRuns(cmd *cobra.Command, args []string) error {
	store, _, err := openSQLiteStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(context.Background(), runsLimit)
	if err != nil {
		return err
	}

	for _, r := range runs {
		state := "[+]"
		if !r.Success {
			state = "[-]"
		} else if r.Cached {
			state = "[=]"
		}
		fmt.Printf("  %s %s %-24s %8s %s\n",
			state, r.CreatedAt.Format(time.DateTime), r.File, r.Duration.Round(time.Microsecond), r.Error)
	}
	return nil
}
