package node

import "github.com/aretw0/arbor/pkg/domain"

// PrioritySelector is a reactive selector. It keeps no memory between ticks:
// every tick starts again at the first child, so a higher-priority child that
// becomes eligible interrupts a lower-priority one that was running.
type PrioritySelector struct {
	base
	children []Node
}

// NewPrioritySelector creates a selector over children in priority order.
// Nil entries are dropped.
func NewPrioritySelector(children []Node, opts ...Option) *PrioritySelector {
	return &PrioritySelector{base: newBase(opts), children: compact(children)}
}

func (n *PrioritySelector) Kind() domain.Kind { return domain.KindPrioritySelector }

func (n *PrioritySelector) Children() []Node { return clone(n.children) }

func (n *PrioritySelector) Execute(tc *Context) domain.Status {
	return n.run(n, tc, func() domain.Status {
		for _, child := range n.children {
			if s := child.Execute(tc); s != domain.Failure {
				return s
			}
		}
		return domain.Failure
	})
}

func (n *PrioritySelector) Reset() {
	for _, child := range n.children {
		child.Reset()
	}
}

// StatefulSequence runs its children in order and remembers the child that
// returned Running, resuming from it on the next tick without re-invoking the
// children before it.
type StatefulSequence struct {
	base
	children []Node
	// index is in [0, len(children)] and 0 whenever the sequence is at rest.
	index int
}

// NewStatefulSequence creates a sequence over children in execution order.
// Nil entries are dropped.
func NewStatefulSequence(children []Node, opts ...Option) *StatefulSequence {
	return &StatefulSequence{base: newBase(opts), children: compact(children)}
}

func (n *StatefulSequence) Kind() domain.Kind { return domain.KindStatefulSequence }

func (n *StatefulSequence) Children() []Node { return clone(n.children) }

// Index returns the position the next tick resumes from.
func (n *StatefulSequence) Index() int { return n.index }

func (n *StatefulSequence) Execute(tc *Context) domain.Status {
	return n.run(n, tc, func() domain.Status {
		for i := n.index; i < len(n.children); i++ {
			switch n.children[i].Execute(tc) {
			case domain.Running:
				n.index = i
				return domain.Running
			case domain.Success:
				continue
			default:
				n.Reset()
				return domain.Failure
			}
		}
		n.index = 0
		return domain.Success
	})
}

func (n *StatefulSequence) Reset() {
	n.index = 0
	for _, child := range n.children {
		child.Reset()
	}
}

func compact(in []Node) []Node {
	out := make([]Node, 0, len(in))
	for _, n := range in {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func clone(in []Node) []Node {
	if len(in) == 0 {
		return nil
	}
	out := make([]Node, len(in))
	copy(out, in)
	return out
}
