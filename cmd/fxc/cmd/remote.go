package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/internal/buildcache"
	"github.com/msto63/fx/internal/frontend"
	"github.com/msto63/fx/pkg/core/config"
	coreGrpc "github.com/msto63/fx/pkg/core/grpc"
	"github.com/msto63/fx/pkg/core/logging"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running frontend",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "localhost:9470", "frontend address")
	rootCmd.AddCommand(statusCmd)
}

// remoteCompiler adapts a frontend client to the local compile result
type remoteCompiler struct {
	client *frontend.Client
}

func newRemoteCompiler(addr string, cfg *config.Config, logger *fxlog.Logger) (*remoteCompiler, error) {
	client, err := dialFrontend(addr, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &remoteCompiler{client: client}, nil
}

func (r *remoteCompiler) Compile(ctx context.Context, file string, src []byte) (*buildcache.Output, error) {
	reply, err := r.client.Compile(ctx, file, src)
	if err != nil {
		return nil, err
	}
	out := &buildcache.Output{RunID: reply.RunID, File: reply.File, Cached: reply.Cached}
	for _, name := range reply.Order {
		out.Functions = append(out.Functions, buildcache.Function{Name: name, ReturnType: reply.Functions[name]})
	}
	return out, nil
}

func (r *remoteCompiler) Close() error {
	return r.client.Close()
}

func dialFrontend(addr string, cfg *config.Config, logger *fxlog.Logger) (*frontend.Client, error) {
	return frontend.Dial(coreGrpc.ClientConfigFrom(addr, cfg.Server), logging.Wrap("fxc", logger))
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client, err := dialFrontend(statusAddr, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("frontend at %s not reachable: %w", statusAddr, err)
	}

	fmt.Printf("%s %v (%v) - %s\n", report["service"], report["version"], statusAddr, colorStatus(fmt.Sprint(report["status"])))
	if checks, ok := report["checks"].([]interface{}); ok {
		for _, c := range checks {
			check, _ := c.(map[string]interface{})
			fmt.Printf("  %-10v %s %v\n", check["name"], colorStatus(fmt.Sprint(check["status"])), check["message"])
		}
	}

	if stats, ok := report["cache"].(map[string]interface{}); ok {
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println("Cache:")
		for _, k := range keys {
			fmt.Printf("  %-18s %v\n", k, stats[k])
		}
	}
	return nil
}

func colorStatus(status string) string {
	switch status {
	case "healthy":
		return color.GreenString(status)
	case "degraded":
		return color.YellowString(status)
	default:
		return color.RedString(status)
	}
}
