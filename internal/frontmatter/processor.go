package frontmatter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

const (
	FieldSource         = "source"
	FieldSourceFile     = "source_file"
	FieldFilePath       = "file_path"
	FieldProcessingDate = "processing_date"
)

var dateFields = []string{FieldDateModification, FieldDateCreation}

// Processor validates and enriches frontmatter against Schema.
type Processor struct {
	schema []Field
	now    func() time.Time
	log    *slog.Logger
}

func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{schema: Schema, now: time.Now, log: logger}
}

// SetClock replaces the time source used for processing_date.
func (p *Processor) SetClock(now func() time.Time) {
	p.now = now
}

// Process validates raw frontmatter and enriches it with file identity.
func (p *Processor) Process(raw Metadata, filePath string) Metadata {
	return p.Enrich(p.Validate(raw), filePath)
}

// Enrich normalizes dates, moves url to a percent-encoded source and adds
// file identity fields. Anomalies are logged and the original value kept.
func (p *Processor) Enrich(md Metadata, filePath string) Metadata {
	out := make(Metadata, len(md)+4)
	for k, v := range md {
		out[k] = v
	}

	for _, field := range dateFields {
		if v, ok := out[field]; ok && !isEmpty(v) {
			if iso, err := normalizeDate(v); err != nil {
				p.log.Error("could not parse date", "field", field, "value", v, "error", err)
			} else {
				out[field] = iso
			}
		}
	}

	if raw, ok := out[FieldURL].(string); ok && raw != "" {
		out[FieldSource] = QuotePath(NormalizeWindowsPath(raw))
	}
	delete(out, FieldURL)

	abs, err := filepath.Abs(filePath)
	if err != nil {
		p.log.Warn("could not resolve absolute path", "path", filePath, "error", err)
		abs = filePath
	}

	out[FieldSourceFile] = filepath.Base(filePath)
	out[FieldFilePath] = NormalizeWindowsPath(abs)
	out[FieldProcessingDate] = p.now().Format(time.RFC3339)

	p.log.Info("processed metadata", "file", filepath.Base(filePath))
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}

func normalizeDate(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.DateOnly), nil
	case string:
		d, err := time.Parse(time.DateOnly, t)
		if err != nil {
			return "", err
		}
		return d.Format(time.DateOnly), nil
	default:
		return "", fmt.Errorf("unsupported date type %T", v)
	}
}

// NormalizeWindowsPath converts a path to backslash style. A leading run of
// backslashes is collapsed to the two-character UNC prefix.
func NormalizeWindowsPath(path string) string {
	normalized := strings.ReplaceAll(path, "/", `\`)
	if strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimLeft(normalized, `\`)
	}
	return normalized
}

// QuotePath percent-encodes s, leaving unreserved characters, '/' and ':'
// untouched. Non-ASCII characters are encoded as their UTF-8 bytes.
func QuotePath(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '~', '/', ':':
		return true
	}
	return false
}
