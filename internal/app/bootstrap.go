package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/adapter/flowise"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/config"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/report"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/scanner"
)

type Dependencies struct {
	Finder   *scanner.Finder
	Uploader *flowise.Client
	Report   *report.Logger
}

// Bootstrap builds the external-facing dependencies. Any error here is a
// configuration error and should abort the process.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	finder, err := scanner.NewFinder(cfg.WatchDirectory, cfg.FilePatterns, cfg.ExcludePatterns, cfg.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("document finder error: %w", err)
	}

	client, err := flowise.NewClient(cfg.FlowiseAPIURL, cfg.FlowiseAPIKey, cfg.DocumentStoreID)
	if err != nil {
		return nil, fmt.Errorf("%w: flowise client: %v", config.ErrInvalid, err)
	}
	slog.InfoContext(ctx, "flowise client ready", "endpoint", client.Endpoint())

	rep := report.Discard()
	if cfg.ReportFile != "" {
		rep, err = report.NewFileLogger(cfg.ReportFile)
		if err != nil {
			return nil, fmt.Errorf("report file error: %w", err)
		}
	}

	return &Dependencies{
		Finder:   finder,
		Uploader: client,
		Report:   rep,
	}, nil
}

func (d *Dependencies) Close() error {
	if d.Report != nil {
		return d.Report.Close()
	}
	return nil
}
