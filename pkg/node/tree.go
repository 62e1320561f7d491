package node

import (
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// BehaviorTree is an owned root node plus the human-readable description it
// was generated from. The description is provenance only.
type BehaviorTree struct {
	Root        Node
	Description string
}

// New creates a tree around root.
func New(root Node, description string) *BehaviorTree {
	return &BehaviorTree{Root: root, Description: description}
}

// Nodes returns every node in depth-first, declared child order.
func (t *BehaviorTree) Nodes() []Node {
	if t == nil {
		return nil
	}
	var out []Node
	Walk(t.Root, func(n Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Find returns the node with the given id.
func (t *BehaviorTree) Find(id string) (Node, bool) {
	var found Node
	if t != nil {
		Walk(t.Root, func(n Node, _ int) bool {
			if n.ID() == id {
				found = n
				return false
			}
			return true
		})
	}
	return found, found != nil
}

// Reset resets the whole tree.
func (t *BehaviorTree) Reset() {
	if t != nil && t.Root != nil {
		t.Root.Reset()
	}
}

// Walk visits n and its descendants depth-first in declared order.
// Returning false from fn stops the walk.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n, depth) {
		return false
	}
	for _, child := range n.Children() {
		if !walk(child, depth+1, fn) {
			return false
		}
	}
	return true
}

// ErrNotATree is returned by Verify when a node is reachable twice.
var ErrNotATree = errors.New("node graph is not a tree")

// Verify checks the structural invariants of a tree rooted at root: every node
// is reachable exactly once, identities are unique, sequence resumption
// indexes are in range, and (if allowed is non-nil) every leaf names a
// capability accepted by allowed.
func Verify(root Node, allowed func(kind domain.Kind, name string) bool) error {
	seen := make(map[Node]bool)
	ids := make(map[string]bool)
	var errs []error

	Walk(root, func(n Node, _ int) bool {
		if seen[n] {
			errs = append(errs, fmt.Errorf("%w: node %s reached twice", ErrNotATree, n.ID()))
			return false
		}
		seen[n] = true
		if ids[n.ID()] {
			errs = append(errs, fmt.Errorf("%w: duplicate id %s", ErrNotATree, n.ID()))
		}
		ids[n.ID()] = true

		switch v := n.(type) {
		case *StatefulSequence:
			if v.index < 0 || v.index > len(v.children) {
				errs = append(errs, fmt.Errorf("sequence %s: resume index %d out of range", v.ID(), v.index))
			}
		case *Action:
			if allowed != nil && !allowed(domain.KindAction, v.name) {
				errs = append(errs, fmt.Errorf("action %q: %w", v.name, domain.ErrCapabilityUnavailable))
			}
		case *Sense:
			if allowed != nil && !allowed(domain.KindSense, v.name) {
				errs = append(errs, fmt.Errorf("sense %q: %w", v.name, domain.ErrCapabilityUnavailable))
			}
		case *Root, *Inverter, *PrioritySelector:
		}
		return true
	})

	return errors.Join(errs...)
}
