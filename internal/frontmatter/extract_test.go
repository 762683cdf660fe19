package frontmatter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/frontmatter"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMeta frontmatter.Metadata
		wantBody string
	}{
		{
			name:     "no frontmatter",
			content:  "# Title\n\nBody text",
			wantMeta: frontmatter.Metadata{},
			wantBody: "# Title\n\nBody text",
		},
		{
			name:     "leading whitespace is not frontmatter",
			content:  "\n---\ntitre: x\n---\nbody",
			wantMeta: frontmatter.Metadata{},
			wantBody: "\n---\ntitre: x\n---\nbody",
		},
		{
			name:     "unterminated block",
			content:  "---\ntitre: x\nbody without closing",
			wantMeta: frontmatter.Metadata{},
			wantBody: "---\ntitre: x\nbody without closing",
		},
		{
			name:     "simple block",
			content:  "---\ntitre: Guide\nversion: 2\n---\n\n  Body text\n\n",
			wantMeta: frontmatter.Metadata{"titre": "Guide", "version": 2},
			wantBody: "Body text",
		},
		{
			name:     "empty block",
			content:  "---\n---\nBody",
			wantMeta: frontmatter.Metadata{},
			wantBody: "Body",
		},
		{
			name:     "later delimiters stay in the body",
			content:  "---\ntitre: a\n---\nintro\n---\noutro",
			wantMeta: frontmatter.Metadata{"titre": "a"},
			wantBody: "intro\n---\noutro",
		},
		{
			name:     "malformed yaml keeps the whole content",
			content:  "---\ntitre: [unclosed\n---\nBody",
			wantMeta: frontmatter.Metadata{},
			wantBody: "---\ntitre: [unclosed\n---\nBody",
		},
		{
			name:     "non-mapping yaml keeps the whole content",
			content:  "---\n- a\n- b\n---\nBody",
			wantMeta: frontmatter.Metadata{},
			wantBody: "---\n- a\n- b\n---\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, body := frontmatter.Extract(tt.content)
			assert.Equal(t, tt.wantMeta, md)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestExtract_Types(t *testing.T) {
	content := "---\n" +
		"date_creation: 2024-03-05\n" +
		"date_modification: \"2024-03-06\"\n" +
		"lien:\n  - https://a\n  - https://b\n" +
		"permission:\n" +
		"---\nbody"

	md, body := frontmatter.Extract(content)

	assert.Equal(t, "body", body)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), md["date_creation"])
	assert.Equal(t, "2024-03-06", md["date_modification"])
	assert.Equal(t, []any{"https://a", "https://b"}, md["lien"])
	assert.Contains(t, md, "permission")
	assert.Nil(t, md["permission"])
}

func TestExtract_MergeKeys(t *testing.T) {
	content := "---\n" +
		"base: &b {titre: T, categorie: guide}\n" +
		"<<: *b\n" +
		"categorie: override\n" +
		"---\nbody"

	md, body := frontmatter.Extract(content)

	assert.Equal(t, "body", body)
	assert.Equal(t, "T", md["titre"])
	assert.Equal(t, "override", md["categorie"])
	assert.NotContains(t, md, "<<")
	assert.Equal(t, map[string]any{"titre": "T", "categorie": "guide"}, md["base"])
}

func TestExtract_MergeSequenceFirstWins(t *testing.T) {
	content := "---\n" +
		"a: &a {titre: A}\n" +
		"b: &b {titre: B, referent: bob}\n" +
		"<<: [*a, *b]\n" +
		"---\n"

	md, _ := frontmatter.Extract(content)

	assert.Equal(t, "A", md["titre"])
	assert.Equal(t, "bob", md["referent"])
}

func TestExtract_NestedNonStringKeys(t *testing.T) {
	md, _ := frontmatter.Extract("---\nlien:\n  - {1: a}\n---\nbody")

	assert.Equal(t, []any{map[string]any{"1": "a"}}, md["lien"])
}
