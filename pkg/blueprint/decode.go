package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a description.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension. Anything that is
// not .json is treated as YAML, which is also a superset of JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and decodes a description file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}
	return Decode(data, FormatFromPath(path))
}

// Decode parses a description. The outer document must be well formed; a
// malformed nested record does not fail decoding but is marked on its
// Blueprint (see Blueprint.Malformed) so the builder can drop only that subtree.
//
// A document whose "feedback" field is set returns the document together with
// an error wrapping ErrFeedback.
func Decode(data []byte, format Format) (*Document, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse blueprint json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse blueprint yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported blueprint format: %q", format)
	}
	return FromValue(raw)
}

// FromValue builds a document from an already decoded generic value
// (maps, slices and scalars as produced by encoding/json or yaml).
func FromValue(raw any) (*Document, error) {
	top, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document must be an object, got %T", domain.ErrMalformedNode, raw)
	}

	doc := &Document{}
	if d, ok := top[FieldDescription].(string); ok {
		doc.Description = d
	}
	if fb, ok := top[FieldFeedback].(string); ok && strings.TrimSpace(fb) != "" {
		doc.Feedback = fb
		return doc, fmt.Errorf("%w: %s", ErrFeedback, fb)
	}

	if tree, ok := top[FieldTree]; ok {
		doc.Tree = fromValue(tree)
		return doc, nil
	}
	if _, ok := top[FieldType]; !ok {
		return nil, fmt.Errorf("%w: document has neither %q nor %q", domain.ErrMalformedNode, FieldTree, FieldType)
	}

	delete(top, FieldDescription)
	doc.Tree = fromValue(top)
	return doc, nil
}

// record is the flat part of a Blueprint, decoded with mapstructure.
type record struct {
	Type     string `mapstructure:"type"`
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Child    any    `mapstructure:"child"`
	Children []any  `mapstructure:"children"`
}

func fromValue(v any) *Blueprint {
	m, ok := v.(map[string]any)
	if !ok {
		return &Blueprint{Malformed: fmt.Errorf("%w: expected object, got %T", domain.ErrMalformedNode, v)}
	}

	var rec record
	var meta mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &meta,
		Result:   &rec,
	})
	if err == nil {
		err = dec.Decode(m)
	}

	bp := &Blueprint{Type: rec.Type, ID: rec.ID, Name: rec.Name}
	if err != nil {
		// Keep whatever scalar fields are readable for error messages.
		if s, ok := m[FieldType].(string); ok {
			bp.Type = s
		}
		if s, ok := m[FieldName].(string); ok {
			bp.Name = s
		}
		bp.Malformed = fmt.Errorf("%w: %v", domain.ErrMalformedNode, err)
		return bp
	}

	if len(meta.Unused) > 0 {
		sort.Strings(meta.Unused)
		bp.Unknown = meta.Unused
	}
	if rec.Child != nil {
		bp.Child = fromValue(rec.Child)
	}
	for _, c := range rec.Children {
		bp.Children = append(bp.Children, fromValue(c))
	}
	return bp
}

// normalize converts map[any]any (as yaml may produce for odd keys) into
// map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}

// Encode serializes a document in the canonical form (decorators use "child").
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported blueprint format: %q", format)
	}
}
