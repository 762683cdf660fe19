package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType is returned for extensions without a document handler.
var ErrUnsupportedType = errors.New("unsupported file type")

// HandlerKind tags a document handler.
type HandlerKind string

const (
	HandlerMarkdown HandlerKind = "markdown"
	HandlerText     HandlerKind = "text"
	HandlerDocx     HandlerKind = "docx"
)

const (
	docxLoader = "docxFile"
	docxMIME   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// loaderFunc produces the loader component for a document.
type loaderFunc func(textLoader, content, filename string) (Component, error)

var handlerExtensions = map[string]HandlerKind{
	".md":       HandlerMarkdown,
	".markdown": HandlerMarkdown,
	".txt":      HandlerText,
	".docx":     HandlerDocx,
}

var loaders = map[HandlerKind]loaderFunc{
	HandlerMarkdown: textLoaderConfig,
	HandlerText:     textLoaderConfig,
	HandlerDocx:     docxLoaderConfig,
}

// HandlerFor returns the handler kind registered for the file's extension.
func HandlerFor(filePath string) (HandlerKind, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	kind, ok := handlerExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return kind, nil
}

// SupportedExtensions lists every extension with a registered handler.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(handlerExtensions))
	for ext := range handlerExtensions {
		exts = append(exts, ext)
	}
	return exts
}

func textLoaderConfig(textLoader, content, _ string) (Component, error) {
	if !utf8.ValidString(content) {
		return Component{}, errors.New("content is not valid UTF-8")
	}
	return Component{Name: textLoader, Config: map[string]any{"text": content}}, nil
}

// docxLoaderConfig sends the raw file as a base64 data URI, the format the
// Flowise file loaders accept.
func docxLoaderConfig(_, content, filename string) (Component, error) {
	uri := fmt.Sprintf("data:%s;base64,%s,filename:%s",
		docxMIME, base64.StdEncoding.EncodeToString([]byte(content)), filename)
	return Component{Name: docxLoader, Config: map[string]any{docxLoader: uri}}, nil
}
