package node

import (
	"github.com/aretw0/arbor/pkg/domain"
)

// scripted is an Action/Sense double that replays a fixed list of results
// and counts invocations. The last result repeats once the script runs out.
type scripted struct {
	name     string
	statuses []domain.Status
	bools    []bool
	calls    int
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Execute() domain.Status {
	i := min(s.calls, len(s.statuses)-1)
	s.calls++
	return s.statuses[i]
}

func (s *scripted) Evaluate() bool {
	i := min(s.calls, len(s.bools)-1)
	s.calls++
	return s.bools[i]
}

func action(name string, statuses ...domain.Status) *scripted {
	return &scripted{name: name, statuses: statuses}
}

func sense(name string, results ...bool) *scripted {
	return &scripted{name: name, bools: results}
}

type mapResolver struct {
	actions map[string]domain.Action
	senses  map[string]domain.Sense
}

func (r mapResolver) Action(name string) (domain.Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

func (r mapResolver) Sense(name string) (domain.Sense, bool) {
	s, ok := r.senses[name]
	return s, ok
}

func resolver(caps ...*scripted) mapResolver {
	r := mapResolver{actions: map[string]domain.Action{}, senses: map[string]domain.Sense{}}
	for _, c := range caps {
		if c.bools != nil {
			r.senses[c.name] = c
		} else {
			r.actions[c.name] = c
		}
	}
	return r
}

// fixed is a leaf-like child used to exercise decorators and composites
// directly, without a resolver.
func fixed(name string, statuses ...domain.Status) (*Action, *scripted) {
	return NewAction(name, WithID(name)), action(name, statuses...)
}
