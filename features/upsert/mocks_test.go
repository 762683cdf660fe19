package upsert_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/adapter/flowise"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/payload"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/report"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/scanner"
)

// Mocks

type MockFinder struct{ mock.Mock }

func (m *MockFinder) FindRecent(ctx context.Context, lookbackHours int) ([]scanner.CandidateFile, error) {
	args := m.Called(ctx, lookbackHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scanner.CandidateFile), args.Error(1)
}

type MockUploader struct{ mock.Mock }

func (m *MockUploader) Upsert(ctx context.Context, p *payload.Payload) (flowise.Result, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(flowise.Result), args.Error(1)
}

type MockBuilder struct{ mock.Mock }

func (m *MockBuilder) Build(filePath, content string, metadata map[string]any) (*payload.Payload, error) {
	args := m.Called(filePath, content, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payload.Payload), args.Error(1)
}

type RecordingReporter struct {
	Entries []report.Entry
}

func (r *RecordingReporter) Log(entry report.Entry) {
	r.Entries = append(r.Entries, entry)
}
