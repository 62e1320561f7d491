package node

import "github.com/aretw0/arbor/pkg/domain"

// Root is the top-level decorator. It reports its child's status unmodified;
// "run forever" emerges from the driver ticking it every cycle.
type Root struct {
	base
	child Node
}

// NewRoot creates a Root. child may be nil, which makes every tick fail.
func NewRoot(child Node, opts ...Option) *Root {
	return &Root{base: newBase(opts), child: child}
}

func (n *Root) Kind() domain.Kind { return domain.KindRoot }

// Child returns the wrapped node, or nil.
func (n *Root) Child() Node { return n.child }

func (n *Root) Children() []Node { return single(n.child) }

func (n *Root) Execute(tc *Context) domain.Status {
	return n.run(n, tc, func() domain.Status {
		if n.child == nil {
			return domain.Failure
		}
		return n.child.Execute(tc)
	})
}

func (n *Root) Reset() {
	if n.child != nil {
		n.child.Reset()
	}
}

// Inverter flips Success and Failure. Running passes through.
type Inverter struct {
	base
	child Node
}

// NewInverter creates an Inverter. child may be nil, which makes every tick fail.
func NewInverter(child Node, opts ...Option) *Inverter {
	return &Inverter{base: newBase(opts), child: child}
}

func (n *Inverter) Kind() domain.Kind { return domain.KindInverter }

// Child returns the wrapped node, or nil.
func (n *Inverter) Child() Node { return n.child }

func (n *Inverter) Children() []Node { return single(n.child) }

func (n *Inverter) Execute(tc *Context) domain.Status {
	return n.run(n, tc, func() domain.Status {
		if n.child == nil {
			return domain.Failure
		}
		return n.child.Execute(tc).Invert()
	})
}

func (n *Inverter) Reset() {
	if n.child != nil {
		n.child.Reset()
	}
}

func single(n Node) []Node {
	if n == nil {
		return nil
	}
	return []Node{n}
}
