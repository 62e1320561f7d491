package domain

// Action is a named behavior an agent can perform. Execute is invoked at most
// once per tick while its leaf is reached and must not block; long-running
// work is modeled by returning Running until done.
type Action interface {
	Name() string
	Execute() Status
}

// Sense is a named boolean predicate about the agent's world.
type Sense interface {
	Name() string
	Evaluate() bool
}

type actionFunc struct {
	name string
	fn   func() Status
}

func (a actionFunc) Name() string    { return a.name }
func (a actionFunc) Execute() Status { return a.fn() }

type senseFunc struct {
	name string
	fn   func() bool
}

func (s senseFunc) Name() string   { return s.name }
func (s senseFunc) Evaluate() bool { return s.fn() }

// NewAction adapts a plain function into an Action.
func NewAction(name string, fn func() Status) Action {
	return actionFunc{name: name, fn: fn}
}

// NewSense adapts a plain predicate into a Sense.
func NewSense(name string, fn func() bool) Sense {
	return senseFunc{name: name, fn: fn}
}
