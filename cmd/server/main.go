// Command equityplan serves the scenario and auth RPC services.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/equityplan/internal/config"
	"github.com/mmynk/equityplan/internal/storage"
	"github.com/mmynk/equityplan/internal/storage/postgres"
	"github.com/mmynk/equityplan/internal/storage/sqlite"
	"github.com/mmynk/equityplan/pkg/logging"
)

var version = "dev"

// cfg is loaded once in the root PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "equityplan",
	Short:         "Startup equity scenario server",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// openStore opens the configured backend. Both backends apply their schema
// on open.
func openStore(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
		return store, nil
	}
}
