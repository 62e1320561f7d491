package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/loam"
	json "github.com/goccy/go-json"
)

// Metadata is the front matter of a blueprint document.
type Metadata struct {
	ID       string `json:"id" mapstructure:"id"`
	Feedback string `json:"feedback,omitempty" mapstructure:"feedback"`
	Tree     any    `json:"tree" mapstructure:"tree"`
}

// Library stores named blueprints as Markdown documents: the tree lives in the
// front matter and the body is the description.
type Library struct {
	Repo *loam.TypedRepository[Metadata]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[Metadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a library rooted at dir. A read-only library never writes
// to dir; use it for serving and validating.
func Open(dir string, readOnly bool) (*Library, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	opts := []loam.Option{loam.WithStrict(true), loam.WithVersioning(false)}
	if readOnly {
		opts = append(opts, loam.WithReadOnly(true))
	}
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Metadata](repo)), nil
}

// Get decodes the blueprint stored under name. Like blueprint.Decode, a
// document carrying feedback is returned together with an error wrapping
// blueprint.ErrFeedback.
func (l *Library) Get(ctx context.Context, name string) (*blueprint.Document, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	raw := map[string]any{
		blueprint.FieldDescription: strings.TrimSpace(doc.Content),
	}
	if doc.Data.Feedback != "" {
		raw[blueprint.FieldFeedback] = doc.Data.Feedback
	}
	if doc.Data.Tree != nil {
		raw[blueprint.FieldTree] = doc.Data.Tree
	}
	return blueprint.FromValue(raw)
}

// Save stores doc under name in canonical form.
func (l *Library) Save(ctx context.Context, name string, doc *blueprint.Document) error {
	meta := Metadata{ID: name, Feedback: doc.Feedback}
	if doc.Tree != nil {
		data, err := json.Marshal(doc.Tree)
		if err != nil {
			return fmt.Errorf("failed to marshal tree: %w", err)
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("failed to convert tree: %w", err)
		}
		meta.Tree = tree
	}

	err := l.Repo.Save(ctx, &loam.DocumentModel[Metadata]{
		ID:      name,
		Content: doc.Description,
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", name, err)
	}
	return nil
}

// List returns the names of all stored blueprints.
func (l *Library) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		name := trimExtension(rawID)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: blueprint %q is defined in both %q and %q", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	return names, nil
}

// LoadFile reads a single Markdown blueprint, opening its directory read-only.
func LoadFile(ctx context.Context, path string) (*blueprint.Document, error) {
	lib, err := Open(filepath.Dir(path), true)
	if err != nil {
		return nil, err
	}
	return lib.Get(ctx, trimExtension(filepath.Base(path)))
}

// IsDocument reports whether path names a Markdown blueprint.
func IsDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
