// Package payload assembles the request body of the Flowise document-store
// upsert endpoint.
package payload

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Component is a named Flowise node configuration.
type Component struct {
	Name   string         `json:"name"`
	Config map[string]any `json:"config"`
}

// Payload is the upsert request body.
type Payload struct {
	Loader        Component      `json:"loader"`
	Splitter      Component      `json:"splitter"`
	Embedding     Component      `json:"embedding"`
	VectorStore   Component      `json:"vectorStore"`
	RecordManager Component      `json:"recordManager"`
	Metadata      map[string]any `json:"metadata"`
}

// Options configures a Builder. Empty names fall back to the Flowise defaults.
type Options struct {
	DocumentLoader        string
	TextSplitter          string
	TextSplitterOverrides map[string]string
	ChunkSize             int
	ChunkOverlap          int
	TokenEncoding         string

	EmbeddingName        string
	VectorStoreName      string
	VectorStoreNamespace string
	RecordManagerName    string
}

// Builder turns a document and its metadata into a Payload. It is safe for
// concurrent use once constructed.
type Builder struct {
	opts      Options
	splitters *splitterSet
}

func NewBuilder(opts Options) (*Builder, error) {
	if opts.DocumentLoader == "" {
		opts.DocumentLoader = "plainText"
	}
	if opts.TextSplitter == "" {
		opts.TextSplitter = string(SplitterRecursiveCharacter)
	}
	if opts.EmbeddingName == "" {
		opts.EmbeddingName = EmbeddingOpenAI
	}
	if opts.VectorStoreName == "" {
		opts.VectorStoreName = VectorStorePinecone
	}
	if opts.VectorStoreNamespace == "" {
		opts.VectorStoreNamespace = "default"
	}
	if opts.RecordManagerName == "" {
		opts.RecordManagerName = RecordManagerPostgres
	}

	set, err := newSplitterSet(opts.TextSplitter, opts.TextSplitterOverrides)
	if err != nil {
		return nil, err
	}

	warnUnknown("embedding", opts.EmbeddingName, knownEmbeddings)
	warnUnknown("vector store", opts.VectorStoreName, knownVectorStores)
	warnUnknown("record manager", opts.RecordManagerName, knownRecordManagers)

	return &Builder{opts: opts, splitters: set}, nil
}

// Build assembles the payload for one document. It fails with
// ErrUnsupportedType when no handler is registered for the file extension.
func (b *Builder) Build(filePath, content string, metadata map[string]any) (*Payload, error) {
	kind, err := HandlerFor(filePath)
	if err != nil {
		return nil, err
	}

	loader, err := loaders[kind](b.opts.DocumentLoader, content, filepath.Base(filePath))
	if err != nil {
		return nil, err
	}

	splitter := b.splitters.forPath(filePath)
	slog.Debug("selected handlers", "path", filePath, "handler", kind, "splitter", splitter)

	p := &Payload{
		Loader: loader,
		Splitter: splitter.Config(SplitterParams{
			ChunkSize:     b.opts.ChunkSize,
			ChunkOverlap:  b.opts.ChunkOverlap,
			TokenEncoding: b.opts.TokenEncoding,
			Extension:     filepath.Ext(filePath),
		}),
		Embedding: Component{Name: b.opts.EmbeddingName, Config: map[string]any{}},
		VectorStore: Component{
			Name:   b.opts.VectorStoreName,
			Config: map[string]any{"namespace": b.opts.VectorStoreNamespace},
		},
		RecordManager: Component{Name: b.opts.RecordManagerName, Config: map[string]any{}},
		Metadata:      metadata,
	}

	p.strip()
	return p, nil
}

func (p *Payload) strip() {
	for _, c := range []*Component{&p.Loader, &p.Splitter, &p.Embedding, &p.VectorStore, &p.RecordManager} {
		c.Config = Strip(c.Config)
	}
	p.Metadata = Strip(p.Metadata)
}

// Strip returns a copy of m without nil values, descending into nested maps
// and into maps held by slices. Maps with non-string keys are re-keyed with
// their string form so the result always encodes as JSON. A nil map yields
// an empty one.
func Strip(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = stripValue(v)
	}
	return out
}

func stripValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Strip(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = e
		}
		return Strip(m)
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = stripValue(e)
		}
		return s
	default:
		return v
	}
}

func warnUnknown(what, name string, known map[string]bool) {
	if !known[name] {
		slog.Warn("unrecognized "+what+" name, passing through", "name", name)
	}
}
