// Package upsert runs one synchronization pass: discover recent documents,
// process their frontmatter and upload them to the Flowise document store.
package upsert

import (
	"context"
	"errors"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/adapter/flowise"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/frontmatter"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/payload"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/report"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/scanner"
)

// ErrFileAccess wraps failures reading a discovered file.
var ErrFileAccess = errors.New("file access failed")

// Summary counts the outcomes of a run.
type Summary struct {
	Found       int `json:"found"`
	Uploaded    int `json:"uploaded"`
	Unsupported int `json:"unsupported"`
	Failed      int `json:"failed"`
}

type Finder interface {
	FindRecent(ctx context.Context, lookbackHours int) ([]scanner.CandidateFile, error)
}

type MetadataProcessor interface {
	Process(raw frontmatter.Metadata, filePath string) frontmatter.Metadata
}

type PayloadBuilder interface {
	Build(filePath, content string, metadata map[string]any) (*payload.Payload, error)
}

type Uploader interface {
	Upsert(ctx context.Context, p *payload.Payload) (flowise.Result, error)
}

type Reporter interface {
	Log(entry report.Entry)
}
