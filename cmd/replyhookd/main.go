// Replyhookd receives inbound email-reply webhooks and purchase events,
// stores them as JSON records, and serves read-only views plus a
// Prometheus metrics endpoint and a basic-auth-gated admin surface.
//
// Configuration is loaded from an optional YAML file overridden by
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults (port 5000, ./decisions ./purchases ./logs)
//	replyhookd
//
//	# Configure via environment
//	SERVER_PORT=8080 ADMIN_USER=ops ADMIN_PASS=secret replyhookd
//
//	# Or via file
//	replyhookd --config /etc/replyhook/config.yaml
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/replyhook/internal/config"
	"github.com/driftwoodlabs/replyhook/internal/logging"
	"github.com/driftwoodlabs/replyhook/internal/metrics"
	"github.com/driftwoodlabs/replyhook/internal/server"
	"github.com/driftwoodlabs/replyhook/internal/store"
)

// Version information (set via ldflags during build)
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "replyhookd",
	Short:   "Inbound email-reply webhook receiver",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run wires config, logger, stores, metrics and the HTTP server, then
// blocks until the context is cancelled by a shutdown signal.
func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	decisions, err := store.NewDecisionStore(cfg.Storage.DecisionsDir)
	if err != nil {
		return fmt.Errorf("open decision store: %w", err)
	}
	purchases, err := store.NewPurchaseStore(cfg.Storage.PurchasesDir)
	if err != nil {
		return fmt.Errorf("open purchase store: %w", err)
	}

	m := metrics.New()

	srv, err := server.New(cfg, logger, m, decisions, purchases)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	logger.Info("starting replyhookd",
		zap.Int("port", cfg.Server.Port),
		zap.String("decisions_dir", cfg.Storage.DecisionsDir),
		zap.String("purchases_dir", cfg.Storage.PurchasesDir),
		zap.Bool("admin_auth", cfg.Admin.AuthEnabled()),
	)

	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
