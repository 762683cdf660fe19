package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/features/upsert"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/app"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/config"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "flowise-upsert",
		Short: "Upload recently modified documents to a Flowise document store",
		Long: `flowise-upsert scans a watch directory for documents modified within the
lookback window, extracts their YAML frontmatter and upserts each one to a
Flowise document store.

Configuration is read from the environment and from an optional .env file.

Examples:
  # Run with ./.env
  flowise-upsert

  # Use another env file
  flowise-upsert --env-file /etc/flowise-upsert.env`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log, closer, err := logger.New(cmd.OutOrStdout(), logger.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				File:   cfg.LogFile,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			defer closer.Close()
			slog.SetDefault(log)

			_, err = run(cmd.Context(), cfg, log)
			return err
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "path to a .env file (ignored if missing)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) (*upsert.Summary, error) {
	log.Info("configuration loaded",
		"watch_directory", cfg.WatchDirectory,
		"file_patterns", cfg.FilePatterns,
		"exclude_patterns", cfg.ExcludePatterns,
		"hours_lookback", cfg.HoursLookback,
		"max_file_size", cfg.MaxFileSize,
		"flowise_api_url", cfg.FlowiseAPIURL,
		"document_store_id", cfg.DocumentStoreID,
		"text_splitter", cfg.TextSplitter,
		"vector_store", cfg.VectorStoreName,
		"embedding", cfg.EmbeddingName,
	)

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		log.Error("failed to bootstrap", "error", err)
		return nil, err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn("failed to close report", "error", err)
		}
	}()

	application, err := app.New(cfg, deps, log)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		return nil, err
	}

	summary, err := application.Run(ctx)
	if err != nil {
		log.Error("error in document processing", "error", err)
		return summary, err
	}
	return summary, nil
}
