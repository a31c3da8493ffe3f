package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/fx/internal/frontend"
	coreGrpc "github.com/msto63/fx/pkg/core/grpc"
	"github.com/msto63/fx/pkg/core/logging"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC frontend service",
	Long: `Runs the fx.v1.Frontend gRPC service with the standard health
service. Compile results are cached according to the [cache] section.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	log := logging.Wrap("fxc", logger)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	srv := frontend.New(frontend.Config{
		Server:         coreGrpc.ServerConfigFrom(cfg.Server),
		MaxSourceBytes: int(cfg.Compiler.MaxSourceBytes),
		Store:          store,
		Memory:         sourcesConfig(cfg),
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info("Frontend started", "address", cfg.Address(), "cache", cfg.Cache.Enabled)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutdown signal received, stopping server...")
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
			srv.Stop(context.Background())
			return err
		}
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Stop(ctx)

	log.Info("Frontend stopped")
	return nil
}
