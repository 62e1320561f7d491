package dsl

import (
	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a blueprint record.
type NodeBuilder struct {
	bp blueprint.Blueprint
}

func record(kind domain.Kind) *NodeBuilder {
	return &NodeBuilder{bp: blueprint.Blueprint{Type: string(kind)}}
}

// Root creates the top-level decorator around child.
func Root(child *NodeBuilder) *NodeBuilder {
	return record(domain.KindRoot).Child(child)
}

// Inverter creates a decorator that swaps SUCCESS and FAILURE of child.
func Inverter(child *NodeBuilder) *NodeBuilder {
	return record(domain.KindInverter).Child(child)
}

// Selector creates a PrioritySelector over children.
func Selector(children ...*NodeBuilder) *NodeBuilder {
	return record(domain.KindPrioritySelector).Add(children...)
}

// Sequence creates a StatefulSequence over children.
func Sequence(children ...*NodeBuilder) *NodeBuilder {
	return record(domain.KindStatefulSequence).Add(children...)
}

// Action creates a leaf bound to the named action capability.
func Action(name string) *NodeBuilder {
	n := record(domain.KindAction)
	n.bp.Name = name
	return n
}

// Sense creates a leaf bound to the named sense capability.
func Sense(name string) *NodeBuilder {
	n := record(domain.KindSense)
	n.bp.Name = name
	return n
}

// ID pins the node id instead of letting the builder generate one.
func (n *NodeBuilder) ID(id string) *NodeBuilder {
	n.bp.ID = id
	return n
}

// Child sets the single child of a decorator. A nil child clears it.
func (n *NodeBuilder) Child(child *NodeBuilder) *NodeBuilder {
	n.bp.Child = nil
	if child != nil {
		n.bp.Child = child.Build()
	}
	return n
}

// Add appends children to a composite. Nil entries are skipped.
func (n *NodeBuilder) Add(children ...*NodeBuilder) *NodeBuilder {
	for _, c := range children {
		if c != nil {
			n.bp.Children = append(n.bp.Children, c.Build())
		}
	}
	return n
}

// Build returns a copy of the underlying record, so later calls on the
// NodeBuilder do not alter blueprints handed out before.
func (n *NodeBuilder) Build() *blueprint.Blueprint {
	return clone(&n.bp)
}

func clone(bp *blueprint.Blueprint) *blueprint.Blueprint {
	if bp == nil {
		return nil
	}
	out := &blueprint.Blueprint{Type: bp.Type, ID: bp.ID, Name: bp.Name}
	out.Child = clone(bp.Child)
	for _, c := range bp.Children {
		out.Children = append(out.Children, clone(c))
	}
	return out
}
