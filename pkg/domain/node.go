package domain

import "fmt"

// Kind is the closed set of node variants understood by the interpreter.
type Kind string

const (
	// KindRoot wraps one child and reports its status unmodified. Looping
	// emerges from the driver re-ticking it every cycle.
	KindRoot Kind = "Root"
	// KindInverter flips Success and Failure of its single child.
	KindInverter Kind = "Inverter"
	// KindPrioritySelector re-evaluates its children from the first one on every tick.
	KindPrioritySelector Kind = "PrioritySelector"
	// KindStatefulSequence runs its children in order and resumes from the last running one.
	KindStatefulSequence Kind = "StatefulSequence"
	// KindAction delegates to a named Action capability.
	KindAction Kind = "Action"
	// KindSense delegates to a named Sense capability.
	KindSense Kind = "Sense"
)

// Kinds lists every node kind in declaration order.
var Kinds = []Kind{
	KindRoot,
	KindInverter,
	KindPrioritySelector,
	KindStatefulSequence,
	KindAction,
	KindSense,
}

// ParseKind validates a discriminator. Matching is exact.
func ParseKind(raw string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// IsDecorator reports whether nodes of this kind own exactly one child.
func (k Kind) IsDecorator() bool {
	return k == KindRoot || k == KindInverter
}

// IsComposite reports whether nodes of this kind own an ordered list of children.
func (k Kind) IsComposite() bool {
	return k == KindPrioritySelector || k == KindStatefulSequence
}

// IsLeaf reports whether nodes of this kind reference a capability by name.
func (k Kind) IsLeaf() bool {
	return k == KindAction || k == KindSense
}
