// Package scanner finds recently modified documents under a watch directory.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrWatchDirectory is returned when the watch directory is missing or not a directory.
	ErrWatchDirectory = errors.New("watch directory unavailable")

	// ErrInvalidPattern is returned for malformed include or exclude globs.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// CandidateFile is a file that passed every discovery filter.
type CandidateFile struct {
	Path    string // absolute
	ModTime time.Time
	Size    int64
	Ext     string // lower-cased, with leading dot
}

// Finder discovers documents by glob, recency, size and exclusion rules.
type Finder struct {
	root     string
	patterns []string
	excludes []string
	maxBytes int64
	now      func() time.Time
}

// NewFinder validates the watch directory and patterns. A maxBytes of zero
// disables the size limit.
func NewFinder(root string, patterns, excludes []string, maxBytes int64) (*Finder, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWatchDirectory, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWatchDirectory, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrWatchDirectory, root)
	}

	for _, p := range append(append([]string{}, patterns...), excludes...) {
		if !doublestar.ValidatePattern(anywhere(p)) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	slog.Info("initialized document finder",
		"watch_directory", abs,
		"file_patterns", patterns,
		"exclude_patterns", excludes,
		"max_file_size", maxBytes,
	)

	return &Finder{
		root:     abs,
		patterns: patterns,
		excludes: excludes,
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

// SetClock replaces the time source used to compute the recency cutoff.
func (f *Finder) SetClock(now func() time.Time) {
	f.now = now
}

// Root returns the absolute watch directory.
func (f *Finder) Root() string {
	return f.root
}

// FindRecent returns files modified strictly after now minus lookbackHours.
// Entries that cannot be read are logged and skipped; only a failure on the
// root itself (or cancellation) is returned as an error.
func (f *Finder) FindRecent(ctx context.Context, lookbackHours int) ([]CandidateFile, error) {
	cutoff := f.now().Add(-time.Duration(lookbackHours) * time.Hour)
	var found []CandidateFile

	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == f.root {
				return fmt.Errorf("%w: %v", ErrWatchDirectory, err)
			}
			slog.ErrorContext(ctx, "error accessing path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			slog.ErrorContext(ctx, "error computing relative path", "path", path, "error", err)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !matchAny(f.patterns, rel) {
			return nil
		}

		// os.Stat follows symlinks, so linked documents are treated like regular files.
		info, err := os.Stat(path)
		if err != nil {
			slog.ErrorContext(ctx, "error accessing file", "path", path, "error", err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !info.ModTime().After(cutoff) {
			return nil
		}
		if !f.shouldProcess(ctx, rel, info) {
			return nil
		}

		found = append(found, CandidateFile{
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
			Ext:     strings.ToLower(filepath.Ext(path)),
		})
		slog.DebugContext(ctx, "found recent file", "path", path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "scan completed", "count", len(found), "hours_lookback", lookbackHours)
	return found, nil
}

// shouldProcess applies exclusion patterns, then the size limit.
func (f *Finder) shouldProcess(ctx context.Context, rel string, info fs.FileInfo) bool {
	if matchAny(f.excludes, rel) {
		slog.DebugContext(ctx, "skipping excluded file", "path", rel)
		return false
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		slog.WarnContext(ctx, "skipping file exceeding size limit", "path", rel, "size", info.Size(), "max_file_size", f.maxBytes)
		return false
	}
	return true
}

// matchAny reports whether rel (slash separated, relative to the root) ends
// with a sequence of path components matching any pattern.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(anywhere(p), rel); ok {
			return true
		}
	}
	return false
}

func anywhere(pattern string) string {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "/")
	if strings.HasPrefix(pattern, "**/") {
		return pattern
	}
	return "**/" + pattern
}
