package upsert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/adapter/flowise"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/frontmatter"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/middleware"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/payload"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/report"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/scanner"
)

type Service struct {
	finder        Finder
	processor     MetadataProcessor
	builder       PayloadBuilder
	uploader      Uploader
	reporter      Reporter
	lookbackHours int
	logger        *slog.Logger
}

func NewService(finder Finder, processor MetadataProcessor, builder PayloadBuilder, uploader Uploader, reporter Reporter, lookbackHours int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = report.Discard()
	}
	return &Service{
		finder:        finder,
		processor:     processor,
		builder:       builder,
		uploader:      uploader,
		reporter:      reporter,
		lookbackHours: lookbackHours,
		logger:        logger,
	}
}

// Run processes every recently modified file in turn. Per-file failures are
// logged, reported and counted; only a failed scan aborts the run.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	files, err := s.finder.FindRecent(ctx, s.lookbackHours)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	s.logger.InfoContext(ctx, "found recent files", "count", len(files), "hours_lookback", s.lookbackHours)

	summary := &Summary{Found: len(files)}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		start := time.Now()
		err := s.ProcessFile(ctx, f)
		entry := report.Entry{
			Path:          f.Path,
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		}

		switch {
		case err == nil:
			summary.Uploaded++
			entry.Status = report.StatusUploaded
			s.logger.InfoContext(ctx, "successfully processed file", "path", f.Path)
		case errors.Is(err, payload.ErrUnsupportedType):
			summary.Unsupported++
			entry.Status = report.StatusUnsupported
			entry.Error = err.Error()
			s.logger.WarnContext(ctx, "skipping unsupported file", "path", f.Path, "error", err)
		default:
			summary.Failed++
			entry.Status = report.StatusFailed
			entry.Error = err.Error()
			s.logFailure(ctx, f.Path, err)
		}
		s.reporter.Log(entry)
	}

	s.logger.InfoContext(ctx, "run complete",
		"found", summary.Found,
		"uploaded", summary.Uploaded,
		"unsupported", summary.Unsupported,
		"failed", summary.Failed,
	)
	return summary, nil
}

// ProcessFile reads one file, processes its frontmatter and uploads it.
func (s *Service) ProcessFile(ctx context.Context, f scanner.CandidateFile) error {
	if _, err := payload.HandlerFor(f.Path); err != nil {
		return err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	s.logger.DebugContext(ctx, "processing file", "path", f.Path, "size", len(data))

	raw, body := frontmatter.Extract(string(data))
	md := s.processor.Process(raw, f.Path)

	result, err := s.Upload(ctx, f.Path, body, md)
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "upsert result", "path", f.Path, "result", result)
	return nil
}

// Upload builds the payload for a document and sends it to the document store.
func (s *Service) Upload(ctx context.Context, filePath, content string, metadata map[string]any) (flowise.Result, error) {
	p, err := s.builder.Build(filePath, content, metadata)
	if err != nil {
		return nil, err
	}
	return s.uploader.Upsert(ctx, p)
}

func (s *Service) logFailure(ctx context.Context, path string, err error) {
	var te *flowise.TransportError
	if errors.As(err, &te) {
		s.logger.ErrorContext(ctx, "error processing file",
			"path", path,
			"status", te.StatusCode,
			"body", string(te.Body),
			"error", err,
		)
		return
	}
	s.logger.ErrorContext(ctx, "error processing file", "path", path, "error", err)
}
