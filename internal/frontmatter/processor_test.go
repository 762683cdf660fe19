package frontmatter_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/frontmatter"
)

var fixedNow = time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC)

func newProcessor() *frontmatter.Processor {
	p := frontmatter.NewProcessor(nil)
	p.SetClock(func() time.Time { return fixedNow })
	return p
}

func schemaKeys() []string {
	keys := make([]string, 0, len(frontmatter.Schema))
	for _, f := range frontmatter.Schema {
		keys = append(keys, f.Name)
	}
	return keys
}

func TestValidate_Empty(t *testing.T) {
	got := newProcessor().Validate(frontmatter.Metadata{})

	require.Len(t, got, len(frontmatter.Schema))
	for _, k := range schemaKeys() {
		v, ok := got[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
}

func TestValidate_Coercion(t *testing.T) {
	raw := frontmatter.Metadata{
		"referent":          "alice",
		"titre":             42,
		"categorie":         true,
		"date_modification": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"date_creation":     20240102,
		"complexite":        1.5,
		"version":           3,
		"lien":              "[]",
		"url":               "docs/guide.md",
		"permission":        []any{"read", "write"},
		"unexpected":        "dropped",
	}

	got := newProcessor().Validate(raw)

	assert.Equal(t, "alice", got["referent"])
	assert.Equal(t, "42", got["titre"])
	assert.Equal(t, "True", got["categorie"])
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got["date_modification"])
	assert.Equal(t, "20240102", got["date_creation"])
	assert.Equal(t, "1.5", got["complexite"])
	assert.Equal(t, 3, got["version"])
	assert.Equal(t, []any{}, got["lien"])
	assert.Equal(t, "docs/guide.md", got["url"])
	assert.Equal(t, "['read', 'write']", got["permission"])
	assert.NotContains(t, got, "unexpected")
	assert.Len(t, got, len(frontmatter.Schema))
}

func TestValidate_StringCoercionRendering(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"whole float", 1.0, "1.0"},
		{"fraction", 2.25, "2.25"},
		{"large float", 1e20, "1e+20"},
		{"small float", 0.00001, "1e-05"},
		{"false", false, "False"},
		{"mixed list", []any{"a", 1, true}, "['a', 1, True]"},
		{"quote in item", []any{"it's"}, `["it's"]`},
		{"nested map", map[string]any{"b": 2, "a": "x"}, "{'a': 'x', 'b': 2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newProcessor().Validate(frontmatter.Metadata{"titre": tt.in})
			assert.Equal(t, tt.want, got["titre"])
		})
	}
}

func TestValidate_ListMismatchKeptAsIs(t *testing.T) {
	got := newProcessor().Validate(frontmatter.Metadata{"lien": "https://single"})
	assert.Equal(t, "https://single", got["lien"])

	got = newProcessor().Validate(frontmatter.Metadata{"version": 1.5})
	assert.Equal(t, "1.5", got["version"])
}

func TestEnrich_Dates(t *testing.T) {
	p := newProcessor()
	md := p.Validate(frontmatter.Metadata{
		"date_creation":     "2024-03-05",
		"date_modification": time.Date(2024, 3, 6, 15, 4, 5, 0, time.UTC),
	})

	got := p.Enrich(md, "doc.md")
	assert.Equal(t, "2024-03-05", got["date_creation"])
	assert.Equal(t, "2024-03-06", got["date_modification"])
}

func TestEnrich_BadDateKept(t *testing.T) {
	p := newProcessor()
	got := p.Enrich(frontmatter.Metadata{"date_creation": "05/03/2024", "date_modification": "2024-3-5"}, "doc.md")

	assert.Equal(t, "05/03/2024", got["date_creation"])
	assert.Equal(t, "2024-3-5", got["date_modification"])
}

func TestEnrich_SourceFromURL(t *testing.T) {
	p := newProcessor()
	got := p.Enrich(frontmatter.Metadata{"url": "docs/guide.md"}, "doc.md")

	assert.NotContains(t, got, "url")
	assert.Equal(t, "docs%5Cguide.md", got["source"])

	got = p.Enrich(frontmatter.Metadata{"url": "C:/Users/me/My Docs/é.md"}, "doc.md")
	assert.Equal(t, "C:%5CUsers%5Cme%5CMy%20Docs%5C%C3%A9.md", got["source"])
}

func TestEnrich_NoURLNoSource(t *testing.T) {
	got := newProcessor().Enrich(frontmatter.Metadata{"url": nil}, "doc.md")

	assert.NotContains(t, got, "source")
	assert.NotContains(t, got, "url")
}

func TestEnrich_FileIdentity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes", "guide.md")

	got := newProcessor().Enrich(frontmatter.Metadata{}, path)

	assert.Equal(t, "guide.md", got["source_file"])
	assert.Equal(t, frontmatter.NormalizeWindowsPath(path), got["file_path"])
	assert.NotContains(t, got["file_path"], "/")
	assert.Equal(t, "2024-03-07T09:30:00Z", got["processing_date"])
}

func TestEnrich_Idempotent(t *testing.T) {
	p := newProcessor()
	path := filepath.Join(t.TempDir(), "guide.md")

	once := p.Process(frontmatter.Metadata{
		"date_creation": "2024-03-05",
		"url":           "//server/share/doc.md",
	}, path)
	twice := p.Enrich(once, path)

	assert.Equal(t, once, twice)
	assert.Equal(t, "2024-03-05", twice["date_creation"])
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	in := frontmatter.Metadata{"url": "a/b"}
	newProcessor().Enrich(in, "doc.md")
	assert.Equal(t, frontmatter.Metadata{"url": "a/b"}, in)
}

func TestNormalizeWindowsPath(t *testing.T) {
	tests := map[string]string{
		"docs/guide.md":         `docs\guide.md`,
		"/home/me/doc.md":       `\home\me\doc.md`,
		"//server/share/doc.md": `\\server\share\doc.md`,
		`\\\server\share`:       `\\server\share`,
		`C:\already\windows.md`: `C:\already\windows.md`,
		"":                      "",
	}
	for in, want := range tests {
		got := frontmatter.NormalizeWindowsPath(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, frontmatter.NormalizeWindowsPath(got), "idempotent for %q", in)
	}
}

func TestQuotePath(t *testing.T) {
	assert.Equal(t, "https://host:8080/a/b", frontmatter.QuotePath("https://host:8080/a/b"))
	assert.Equal(t, "a%20b%3Fc%3Dd", frontmatter.QuotePath("a b?c=d"))
	assert.Equal(t, "%5C%5Cserver", frontmatter.QuotePath(`\\server`))
	assert.Equal(t, "-_.~", frontmatter.QuotePath("-_.~"))
}
