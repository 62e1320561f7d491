package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ActionScript replays statuses for one action.
type ActionScript struct {
	Name     string          `yaml:"name" json:"name"`
	Statuses []domain.Status `yaml:"statuses" json:"statuses"`
	Loop     bool            `yaml:"loop,omitempty" json:"loop,omitempty"`
}

// SenseScript replays values for one sense.
type SenseScript struct {
	Name   string `yaml:"name" json:"name"`
	Values []bool `yaml:"values" json:"values"`
	Loop   bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
}

// File is the on-disk layout of a script.
type File struct {
	Actions []ActionScript `yaml:"actions" json:"actions"`
	Senses  []SenseScript  `yaml:"senses" json:"senses"`
}

// Script is a registry.Source whose capabilities replay a File. Call counts
// are kept per capability name.
type Script struct {
	mu      sync.Mutex
	file    File
	calls   map[string]int
	actions []domain.Action
	senses  []domain.Sense
}

// Load reads a script from path. JSON is used for a .json extension, YAML
// otherwise.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var f File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	return New(f)
}

// Parse decodes a YAML script.
func Parse(data []byte) (*Script, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return New(f)
}

// New validates f and builds its capabilities. Empty sequences and invalid
// statuses are rejected; names are left to the registry to check.
func New(f File) (*Script, error) {
	s := &Script{file: f, calls: make(map[string]int)}

	var errs []error
	for _, a := range f.Actions {
		if len(a.Statuses) == 0 {
			errs = append(errs, fmt.Errorf("action %q: no statuses", a.Name))
			continue
		}
		for i, st := range a.Statuses {
			if !st.Valid() {
				errs = append(errs, fmt.Errorf("action %q: statuses[%d]: %w", a.Name, i, domain.ErrInvalidStatus))
			}
		}
		s.actions = append(s.actions, domain.NewAction(a.Name, s.actionFn(a)))
	}
	for _, v := range f.Senses {
		if len(v.Values) == 0 {
			errs = append(errs, fmt.Errorf("sense %q: no values", v.Name))
			continue
		}
		s.senses = append(s.senses, domain.NewSense(v.Name, s.senseFn(v)))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Script) actionFn(a ActionScript) func() domain.Status {
	key := "action:" + a.Name
	return func() domain.Status {
		return a.Statuses[s.next(key, len(a.Statuses), a.Loop)]
	}
}

func (s *Script) senseFn(v SenseScript) func() bool {
	key := "sense:" + v.Name
	return func() bool {
		return v.Values[s.next(key, len(v.Values), v.Loop)]
	}
}

func (s *Script) next(key string, n int, loop bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls[key]
	s.calls[key] = i + 1
	if loop {
		return i % n
	}
	return min(i, n-1)
}

// Actions implements registry.Source.
func (s *Script) Actions() []domain.Action { return s.actions }

// Senses implements registry.Source.
func (s *Script) Senses() []domain.Sense { return s.senses }

// ActionCalls reports how often the named action has been executed.
func (s *Script) ActionCalls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["action:"+name]
}

// SenseCalls reports how often the named sense has been evaluated.
func (s *Script) SenseCalls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["sense:"+name]
}

// Rewind restarts every sequence from its first entry.
func (s *Script) Rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.calls)
}

// File returns the script as loaded.
func (s *Script) File() File { return s.file }
