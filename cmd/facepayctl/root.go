package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/your-org/facepay/internal/config"
	"github.com/your-org/facepay/internal/observability"
	"github.com/your-org/facepay/internal/storage"
)

const Version = "0.1.0"

var (
	configPath string

	cfg   *config.Config
	db    *storage.PostgresStore
	minio *storage.MinIOStore
)

var rootCmd = &cobra.Command{
	Use:           "facepayctl",
	Short:         "Operate the facepay face recognition wallet",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		observability.SetupLogger(cfg.Logging)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

// needDB connects to Postgres on first use.
func needDB(ctx context.Context) (*storage.PostgresStore, error) {
	if db != nil {
		return db, nil
	}
	var err error
	db, err = storage.NewPostgresStoreFromDSN(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func needMinIO() (*storage.MinIOStore, error) {
	if minio != nil {
		return minio, nil
	}
	var err error
	minio, err = storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}
	return minio, nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
}
