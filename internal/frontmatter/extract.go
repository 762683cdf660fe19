// Package frontmatter extracts, validates and enriches the YAML metadata
// block that opens a document.
package frontmatter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Metadata maps frontmatter field names to their values.
type Metadata map[string]any

// Extract splits content into its frontmatter and body. Content without a
// leading delimiter, or without a closing one, is returned unchanged with
// empty metadata. When the block is not valid YAML the whole original
// content is returned, frontmatter included.
func Extract(content string) (Metadata, string) {
	if !strings.HasPrefix(content, delimiter) {
		return Metadata{}, content
	}

	parts := strings.SplitN(content, delimiter, 3)[1:]
	if len(parts) < 2 {
		return Metadata{}, content
	}

	md, err := parseBlock(parts[0])
	if err != nil {
		slog.Warn("error parsing frontmatter", "error", err)
		return Metadata{}, content
	}

	slog.Debug("extracted frontmatter", "fields", len(md))
	return md, strings.TrimSpace(parts[1])
}

// parseBlock decodes a YAML mapping. Values tagged !!timestamp are decoded
// as time.Time so that native dates can be told apart from quoted strings.
func parseBlock(block string) (Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, err
	}

	md := Metadata{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return md, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return md, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter is not a mapping (line %d)", root.Line)
	}

	fields, err := decodeMapping(root, true)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		md[k] = v
	}

	return md, nil
}

// decodeMapping decodes a mapping node field by field. Merge keys (<<) are
// expanded; explicit keys win over merged ones, and earlier merge sources
// win over later ones. Only top-level values get native timestamps.
func decodeMapping(n *yaml.Node, top bool) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)

	var sources []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		if isMergeKey(n.Content[i]) {
			v := resolveAlias(n.Content[i+1])
			if v.Kind == yaml.SequenceNode {
				sources = append(sources, v.Content...)
			} else {
				sources = append(sources, v)
			}
		}
	}
	for i := len(sources) - 1; i >= 0; i-- {
		src := resolveAlias(sources[i])
		if src.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: merge source is not a mapping", src.Line)
		}
		merged, err := decodeMapping(src, top)
		if err != nil {
			return nil, err
		}
		for k, v := range merged {
			out[k] = v
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if isMergeKey(keyNode) {
			continue
		}

		key, err := decodeKey(keyNode)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
		}

		decode := decodeElement
		if top {
			decode = decodeValue
		}
		val, err := decode(valNode)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// decodeKey renders any scalar or composite key as a string so that nested
// mappings always decode to map[string]any.
func decodeKey(n *yaml.Node) (string, error) {
	n = resolveAlias(n)
	if n.Kind == yaml.ScalarNode {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func decodeValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		var t time.Time
		if err := n.Decode(&t); err == nil {
			return t, nil
		}
	}
	return decodeElement(n)
}

// decodeElement decodes nested values, keeping scalars as yaml.v3 types them.
func decodeElement(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		return decodeMapping(n, false)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeElement(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
