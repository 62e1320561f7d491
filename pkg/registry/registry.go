package registry

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Source supplies the capability providers associated with an agent.
type Source interface {
	Actions() []domain.Action
	Senses() []domain.Sense
}

// Static is a Source backed by plain slices.
type Static struct {
	ActionList []domain.Action
	SenseList  []domain.Sense
}

func (s Static) Actions() []domain.Action { return s.ActionList }
func (s Static) Senses() []domain.Sense   { return s.SenseList }

// Registry indexes capabilities by name. It is built once at bind time and
// read on every leaf evaluation.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]domain.Action
	senses  map[string]domain.Sense
	logger  *slog.Logger
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		actions: make(map[string]domain.Action),
		senses:  make(map[string]domain.Sense),
		logger:  logger,
	}
}

// Bind collects every provider from source into a new registry. Providers
// with an empty or duplicate name are skipped and reported; the returned
// registry stays usable for the rest.
func Bind(source Source, logger *slog.Logger) (*Registry, []error) {
	r := New(logger)
	if source == nil {
		return r, nil
	}

	var errs []error
	for _, a := range source.Actions() {
		if err := r.RegisterAction(a); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range source.Senses() {
		if err := r.RegisterSense(s); err != nil {
			errs = append(errs, err)
		}
	}
	return r, errs
}

// RegisterAction adds an Action. Unlike a plain map assignment, an existing
// entry is never overwritten.
func (r *Registry) RegisterAction(a domain.Action) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return register(r, r.actions, "action", a.Name(), a)
}

// RegisterSense adds a Sense. An existing entry is never overwritten.
func (r *Registry) RegisterSense(s domain.Sense) error {
	if s == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return register(r, r.senses, "sense", s.Name(), s)
}

func register[T any](r *Registry, m map[string]T, kind, name string, v T) error {
	if name == "" {
		err := fmt.Errorf("%s provider %T: %w", kind, v, domain.ErrEmptyCapabilityName)
		r.logger.Error("capability skipped", "kind", kind, "provider", fmt.Sprintf("%T", v), "error", err)
		return err
	}
	if _, exists := m[name]; exists {
		err := fmt.Errorf("%s %q (provider %T): %w", kind, name, v, domain.ErrDuplicateCapability)
		r.logger.Error("capability skipped", "kind", kind, "name", name, "provider", fmt.Sprintf("%T", v), "error", err)
		return err
	}
	m[name] = v
	return nil
}

// Action looks up an Action by name.
func (r *Registry) Action(name string) (domain.Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Sense looks up a Sense by name.
func (r *Registry) Sense(name string) (domain.Sense, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senses[name]
	return s, ok
}

// ActionNames returns the registered action names, sorted.
func (r *Registry) ActionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions)
}

// SenseNames returns the registered sense names, sorted.
func (r *Registry) SenseNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.senses)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
