package node

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/google/uuid"
)

// Node is an evaluable unit of a behavior tree.
//
// The set of implementations is closed: *Root, *Inverter, *PrioritySelector,
// *StatefulSequence, *Action and *Sense. Code that needs to branch on the
// variant uses a type switch over those six types.
type Node interface {
	// ID returns the identity assigned at construction.
	ID() string
	// Kind returns the variant discriminator.
	Kind() domain.Kind
	// Status returns the last observed status. It is Success before the first tick.
	Status() domain.Status
	// Children returns a copy of the owned children in declared order.
	Children() []Node
	// Execute evaluates the node and its subtree for the current tick.
	Execute(tc *Context) domain.Status
	// Reset clears resumption state in the whole subtree.
	Reset()

	sealed()
}

// Option configures a node at construction time.
type Option func(*base)

// WithID sets an explicit identity instead of a generated one.
func WithID(id string) Option {
	return func(b *base) {
		if id != "" {
			b.id = id
		}
	}
}

type base struct {
	id     string
	status domain.Status
}

func newBase(opts []Option) base {
	b := base{status: domain.Success}
	for _, opt := range opts {
		opt(&b)
	}
	if b.id == "" {
		b.id = uuid.NewString()
	}
	return b
}

func (b *base) ID() string            { return b.id }
func (b *base) Status() domain.Status { return b.status }
func (b *base) sealed()               {}

// run wraps one evaluation with hooks and records the resulting status.
func (b *base) run(self Node, tc *Context, eval func() domain.Status) domain.Status {
	tc.enter(self)
	s := eval()
	b.status = s
	tc.leave(self, s)
	return s
}

// nameOf returns the capability name of a leaf, or "" for other variants.
func nameOf(n Node) string {
	switch v := n.(type) {
	case *Action:
		return v.name
	case *Sense:
		return v.name
	case *Root, *Inverter, *PrioritySelector, *StatefulSequence:
		return ""
	}
	return ""
}

// Name returns the capability name of an Action or Sense node, or "" otherwise.
func Name(n Node) string {
	return nameOf(n)
}
