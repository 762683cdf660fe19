package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/features/upsert"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/config"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/frontmatter"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/middleware"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/payload"
)

type App struct {
	Service   *upsert.Service
	Processor *frontmatter.Processor
	Builder   *payload.Builder
	logger    *slog.Logger
}

func New(cfg *config.Config, deps *Dependencies, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	processor := frontmatter.NewProcessor(logger)

	builder, err := payload.NewBuilder(payload.Options{
		DocumentLoader:        cfg.DocumentLoader,
		TextSplitter:          cfg.TextSplitter,
		TextSplitterOverrides: cfg.TextSplitterOverrides,
		ChunkSize:             cfg.ChunkSize,
		ChunkOverlap:          cfg.ChunkOverlap,
		TokenEncoding:         cfg.TokenEncoding,
		EmbeddingName:         cfg.EmbeddingName,
		VectorStoreName:       cfg.VectorStoreName,
		VectorStoreNamespace:  cfg.VectorStoreNamespace,
		RecordManagerName:     cfg.RecordManagerName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	svc := upsert.NewService(deps.Finder, processor, builder, deps.Uploader, deps.Report, cfg.HoursLookback, logger)

	return &App{
		Service:   svc,
		Processor: processor,
		Builder:   builder,
		logger:    logger,
	}, nil
}

// Run executes one synchronization pass under a fresh correlation id unless
// ctx already carries one.
func (a *App) Run(ctx context.Context) (*upsert.Summary, error) {
	if _, ok := ctx.Value(middleware.CorrelationKey).(string); !ok {
		ctx = middleware.WithCorrelationID(ctx, middleware.NewCorrelationID())
	}

	a.logger.InfoContext(ctx, "starting document processing")
	return a.Service.Run(ctx)
}
