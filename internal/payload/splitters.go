package payload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownSplitter is returned when a configured splitter name is not registered.
var ErrUnknownSplitter = errors.New("unknown text splitter")

// SplitterKind is the Flowise name of a text splitter.
type SplitterKind string

const (
	SplitterMarkdown           SplitterKind = "markdownTextSplitter"
	SplitterCharacter          SplitterKind = "characterTextSplitter"
	SplitterRecursiveCharacter SplitterKind = "recursiveCharacterTextSplitter"
	SplitterToken              SplitterKind = "tokenTextSplitter"
	SplitterHTMLToMarkdown     SplitterKind = "htmlToMarkdownTextSplitter"
	SplitterCode               SplitterKind = "codeTextSplitter"
)

// SplitterParams carries everything a splitter may need.
type SplitterParams struct {
	ChunkSize     int
	ChunkOverlap  int
	TokenEncoding string
	Extension     string
}

type splitterFunc func(p SplitterParams) map[string]any

var splitters = map[SplitterKind]splitterFunc{
	SplitterMarkdown:           baseSplitter,
	SplitterCharacter:          baseSplitter,
	SplitterHTMLToMarkdown:     baseSplitter,
	SplitterRecursiveCharacter: recursiveSplitter,
	SplitterToken:              tokenSplitter,
	SplitterCode:               codeSplitter,
}

var recursiveSeparators = []string{"\n\n", "\n", " ", ""}

// codeLanguages maps extensions to the language identifiers of the code splitter.
var codeLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "js",
	".ts":   "js",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".cpp":  "cpp",
	".php":  "php",
	".md":   "markdown",
	".html": "html",
	".sol":  "sol",
}

// ParseSplitter validates a splitter name.
func ParseSplitter(name string) (SplitterKind, error) {
	kind := SplitterKind(strings.TrimSpace(name))
	if _, ok := splitters[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSplitter, name)
	}
	return kind, nil
}

// Config renders the splitter component for the given parameters.
func (k SplitterKind) Config(p SplitterParams) Component {
	return Component{Name: string(k), Config: splitters[k](p)}
}

func baseSplitter(p SplitterParams) map[string]any {
	return map[string]any{
		"chunkSize":    p.ChunkSize,
		"chunkOverlap": p.ChunkOverlap,
	}
}

func recursiveSplitter(p SplitterParams) map[string]any {
	cfg := baseSplitter(p)
	seps := make([]any, len(recursiveSeparators))
	for i, s := range recursiveSeparators {
		seps[i] = s
	}
	cfg["separators"] = seps
	return cfg
}

func tokenSplitter(p SplitterParams) map[string]any {
	cfg := baseSplitter(p)
	if p.TokenEncoding != "" {
		cfg["encodingName"] = p.TokenEncoding
	}
	return cfg
}

func codeSplitter(p SplitterParams) map[string]any {
	cfg := baseSplitter(p)
	if lang, ok := codeLanguages[strings.ToLower(p.Extension)]; ok {
		cfg["language"] = lang
	}
	return cfg
}

// splitterSet selects a splitter per extension with a single fallback.
type splitterSet struct {
	fallback  SplitterKind
	overrides map[string]SplitterKind
}

func newSplitterSet(fallback string, overrides map[string]string) (*splitterSet, error) {
	def, err := ParseSplitter(fallback)
	if err != nil {
		return nil, err
	}

	set := &splitterSet{fallback: def, overrides: make(map[string]SplitterKind, len(overrides))}
	for ext, name := range overrides {
		kind, err := ParseSplitter(name)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", ext, err)
		}
		set.overrides[normalizeExt(ext)] = kind
	}
	return set, nil
}

func (s *splitterSet) forPath(filePath string) SplitterKind {
	if kind, ok := s.overrides[strings.ToLower(filepath.Ext(filePath))]; ok {
		return kind
	}
	return s.fallback
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
