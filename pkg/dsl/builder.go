package dsl

import (
	"errors"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/builder"
)

// ErrNoTree is returned by Build when no tree was set.
var ErrNoTree = errors.New("dsl: no tree defined")

// Builder manages the construction of a behavior tree description.
type Builder struct {
	description string
	tree        *NodeBuilder
}

// New creates a new description builder.
func New(description string) *Builder {
	return &Builder{description: description}
}

// Tree sets the top-level node.
func (b *Builder) Tree(root *NodeBuilder) *Builder {
	b.tree = root
	return b
}

// Document returns the description in the same shape a generator would
// produce, ready to be encoded or built.
func (b *Builder) Document() *blueprint.Document {
	doc := &blueprint.Document{Description: b.description}
	if b.tree != nil {
		doc.Tree = b.tree.Build()
	}
	return doc
}

// Build validates the description against catalog and constructs the tree.
func (b *Builder) Build(catalog *builder.Catalog, opts ...builder.Option) (*builder.Result, error) {
	if b.tree == nil {
		return nil, ErrNoTree
	}
	return builder.New(catalog, opts...).Build(b.Document())
}
