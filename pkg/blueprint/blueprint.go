package blueprint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Field names of the external description format.
const (
	FieldType        = "type"
	FieldID          = "id"
	FieldName        = "name"
	FieldChild       = "child"
	FieldChildren    = "children"
	FieldTree        = "tree"
	FieldDescription = "description"
	FieldFeedback    = "feedback"
)

// ErrFeedback is returned when the generator answered with feedback instead of a tree.
var ErrFeedback = errors.New("generator returned feedback instead of a tree")

// Blueprint is one record of a structural tree description.
//
// Decorators (Root, Inverter) carry their single child in Child. The legacy
// form, a Children list on a decorator, is still accepted by the builder.
// Composites carry an ordered Children list. Action and Sense carry a
// capability Name.
type Blueprint struct {
	Type     string       `json:"type" yaml:"type"`
	ID       string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	Child    *Blueprint   `json:"child,omitempty" yaml:"child,omitempty"`
	Children []*Blueprint `json:"children,omitempty" yaml:"children,omitempty"`

	// Malformed is set when the record itself could not be decoded. The other
	// fields are then best effort.
	Malformed error `json:"-" yaml:"-"`
	// Unknown lists fields present in the record but not understood.
	Unknown []string `json:"-" yaml:"-"`
}

// Document is a complete generator answer: either a tree or feedback.
type Document struct {
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Feedback    string     `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Tree        *Blueprint `json:"tree,omitempty" yaml:"tree,omitempty"`
}

// Label returns a short human-readable label such as `Action("Chase")`.
func (b *Blueprint) Label() string {
	if b == nil {
		return "<nil>"
	}
	if b.Name != "" {
		return fmt.Sprintf("%s(%q)", b.Type, b.Name)
	}
	if b.Type == "" {
		return "<untyped>"
	}
	return b.Type
}

// Kind parses the record discriminator.
func (b *Blueprint) Kind() (domain.Kind, error) {
	return domain.ParseKind(b.Type)
}

// Count returns the number of records in the subtree, including b.
func (b *Blueprint) Count() int {
	if b == nil {
		return 0
	}
	n := 1
	n += b.Child.Count()
	for _, c := range b.Children {
		n += c.Count()
	}
	return n
}

// String renders the subtree on one line, e.g. Root(StatefulSequence(Sense("A"), Action("B"))).
func (b *Blueprint) String() string {
	if b == nil {
		return "<nil>"
	}
	var parts []string
	if b.Child != nil {
		parts = append(parts, b.Child.String())
	}
	for _, c := range b.Children {
		parts = append(parts, c.String())
	}
	if len(parts) == 0 {
		return b.Label()
	}
	return b.Label() + "(" + strings.Join(parts, ", ") + ")"
}
