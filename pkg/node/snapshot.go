package node

import "github.com/aretw0/arbor/pkg/domain"

// Snapshot is a serializable, recursive view of node statuses, used for
// diagnostics and visualization only.
type Snapshot struct {
	ID     string        `json:"id" yaml:"id"`
	Kind   domain.Kind   `json:"kind" yaml:"kind"`
	Name   string        `json:"name,omitempty" yaml:"name,omitempty"`
	Status domain.Status `json:"status" yaml:"status"`
	// Index is the resume position of a StatefulSequence.
	Index    *int       `json:"index,omitempty" yaml:"index,omitempty"`
	Children []Snapshot `json:"children,omitempty" yaml:"children,omitempty"`
}

// Capture builds a snapshot of n and its subtree. It returns nil for a nil node.
func Capture(n Node) *Snapshot {
	if n == nil {
		return nil
	}
	s := &Snapshot{
		ID:     n.ID(),
		Kind:   n.Kind(),
		Status: n.Status(),
	}

	switch v := n.(type) {
	case *Action:
		s.Name = v.name
	case *Sense:
		s.Name = v.name
	case *StatefulSequence:
		idx := v.index
		s.Index = &idx
	case *Root, *Inverter, *PrioritySelector:
	}

	for _, child := range n.Children() {
		s.Children = append(s.Children, *Capture(child))
	}
	return s
}

// Snapshot captures the whole tree.
func (t *BehaviorTree) Snapshot() *Snapshot {
	if t == nil {
		return nil
	}
	return Capture(t.Root)
}

// Walk visits the snapshot and its descendants depth-first.
func (s *Snapshot) Walk(fn func(s *Snapshot, depth int)) {
	s.walk(0, fn)
}

func (s *Snapshot) walk(depth int, fn func(*Snapshot, int)) {
	if s == nil {
		return
	}
	fn(s, depth)
	for i := range s.Children {
		s.Children[i].walk(depth+1, fn)
	}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Index != nil {
		idx := *s.Index
		c.Index = &idx
	}
	if s.Children != nil {
		c.Children = make([]Snapshot, len(s.Children))
		for i := range s.Children {
			c.Children[i] = *s.Children[i].Clone()
		}
	}
	return &c
}
