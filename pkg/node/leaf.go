package node

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Action delegates to the Action capability registered under its name and
// reports the capability's status verbatim.
type Action struct {
	base
	name string
}

// NewAction creates an Action leaf bound to a capability name.
func NewAction(name string, opts ...Option) *Action {
	return &Action{base: newBase(opts), name: name}
}

func (n *Action) Kind() domain.Kind { return domain.KindAction }
func (n *Action) Name() string      { return n.name }
func (n *Action) Children() []Node  { return nil }
func (n *Action) Reset()            {}

func (n *Action) Execute(tc *Context) domain.Status {
	return n.run(n, tc, func() domain.Status {
		var capability domain.Action
		if r := tc.resolver(); r != nil {
			capability, _ = r.Action(n.name)
		}
		if capability == nil {
			tc.configError(n, n.name, fmt.Errorf("action %q: %w", n.name, domain.ErrCapabilityNotFound))
			return domain.Failure
		}

		s, err := invoke(capability.Execute)
		if err != nil {
			tc.configError(n, n.name, fmt.Errorf("action %q: %w", n.name, err))
			return domain.Failure
		}
		if !s.Valid() {
			tc.configError(n, n.name, fmt.Errorf("action %q returned %v: %w", n.name, s, domain.ErrInvalidStatus))
			return domain.Failure
		}
		return s
	})
}

// Sense delegates to the Sense predicate registered under its name:
// true is Success, false is Failure. A Sense never reports Running.
type Sense struct {
	base
	name string
}

// NewSense creates a Sense leaf bound to a capability name.
func NewSense(name string, opts ...Option) *Sense {
	return &Sense{base: newBase(opts), name: name}
}

func (n *Sense) Kind() domain.Kind { return domain.KindSense }
func (n *Sense) Name() string      { return n.name }
func (n *Sense) Children() []Node  { return nil }
func (n *Sense) Reset()            {}

func (n *Sense) Execute(tc *Context) domain.Status {
	return n.run(n, tc, func() domain.Status {
		var capability domain.Sense
		if r := tc.resolver(); r != nil {
			capability, _ = r.Sense(n.name)
		}
		if capability == nil {
			tc.configError(n, n.name, fmt.Errorf("sense %q: %w", n.name, domain.ErrCapabilityNotFound))
			return domain.Failure
		}

		ok, err := invoke(capability.Evaluate)
		if err != nil {
			tc.configError(n, n.name, fmt.Errorf("sense %q: %w", n.name, err))
			return domain.Failure
		}
		if ok {
			return domain.Success
		}
		return domain.Failure
	})
}

// invoke calls a capability and converts a panic into ErrCapabilityPanic.
func invoke[T any](fn func() T) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrCapabilityPanic, r)
		}
	}()
	return fn(), nil
}
