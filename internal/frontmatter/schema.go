package frontmatter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is a value type accepted by a schema field.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindInt
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindInt:
		return "int"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Field is a named schema entry with the kinds it accepts.
type Field struct {
	Name  string
	Kinds []Kind
}

func (f Field) accepts(k Kind) bool {
	for _, a := range f.Kinds {
		if a == k {
			return true
		}
	}
	return false
}

const (
	FieldDateModification = "date_modification"
	FieldDateCreation     = "date_creation"
	FieldURL              = "url"
)

// Schema lists the expected frontmatter fields in output order.
var Schema = []Field{
	{Name: "referent", Kinds: []Kind{KindString}},
	{Name: "titre", Kinds: []Kind{KindString}},
	{Name: "categorie", Kinds: []Kind{KindString}},
	{Name: FieldDateModification, Kinds: []Kind{KindString, KindDate}},
	{Name: FieldDateCreation, Kinds: []Kind{KindString, KindDate}},
	{Name: "complexite", Kinds: []Kind{KindString}},
	{Name: "version", Kinds: []Kind{KindInt, KindString}},
	{Name: "lien", Kinds: []Kind{KindList}},
	{Name: FieldURL, Kinds: []Kind{KindString}},
	{Name: "permission", Kinds: []Kind{KindString}},
}

// Validate returns exactly one entry per schema field. Missing fields are
// nil, mismatched values are coerced where possible, and fields outside the
// schema are dropped. It never fails.
func (p *Processor) Validate(raw Metadata) Metadata {
	validated := make(Metadata, len(p.schema))

	for _, field := range p.schema {
		value, ok := raw[field.Name]
		if !ok || value == nil {
			p.log.Warn("missing expected field", "field", field.Name)
			validated[field.Name] = nil
			continue
		}

		kind, known := kindOf(value)
		if !known || !field.accepts(kind) {
			p.log.Warn("field has unexpected type",
				"field", field.Name,
				"type", fmt.Sprintf("%T", value),
				"expected", fmt.Sprint(field.Kinds),
			)
			value = coerce(field, value)
		}
		validated[field.Name] = value
	}

	for name := range raw {
		if _, ok := validated[name]; !ok {
			p.log.Debug("dropping unexpected field", "field", name)
		}
	}

	return validated
}

func kindOf(v any) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case time.Time:
		return KindDate, true
	case int, int64, uint64:
		return KindInt, true
	case []any:
		return KindList, true
	default:
		return 0, false
	}
}

func coerce(field Field, v any) any {
	if field.accepts(KindString) {
		return stringify(v)
	}
	if field.accepts(KindList) {
		if s, ok := v.(string); ok && s == "[]" {
			return []any{}
		}
	}
	return v
}

// stringify renders v the way the metadata consumers historically saw it:
// True/False, floats with a fractional part, quoted items inside lists.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return formatFloat(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, repr(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, repr(k)+": "+repr(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(t)
	}
}

// repr is stringify for container elements: strings are quoted.
func repr(v any) string {
	s, ok := v.(string)
	if !ok {
		return stringify(v)
	}
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
