package gobt

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	bt "github.com/joeycumines/go-behaviortree"
)

// Ticker is the part of runner.Driver a bt leaf needs.
type Ticker interface {
	Tick(ctx context.Context) (domain.Status, error)
}

// Option configures the adapters built by Node and Action.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FromStatus maps an arbor status onto go-behaviortree. Invalid statuses map
// to bt.Failure.
func FromStatus(s domain.Status) bt.Status {
	switch s {
	case domain.Success:
		return bt.Success
	case domain.Running:
		return bt.Running
	default:
		return bt.Failure
	}
}

// ToStatus maps a go-behaviortree status onto arbor.
func ToStatus(s bt.Status) domain.Status {
	switch s {
	case bt.Success:
		return domain.Success
	case bt.Running:
		return domain.Running
	default:
		return domain.Failure
	}
}

// Node returns a bt leaf that ticks d once per bt tick.
//
// An inactive driver surfaces as a bt error. Publishing errors do not: the
// tick happened and its status stands.
func Node(ctx context.Context, d Ticker, opts ...Option) bt.Node {
	o := newOptions(opts)
	return bt.New(func(children []bt.Node) (bt.Status, error) {
		status, err := d.Tick(ctx)
		if errors.Is(err, domain.ErrNotActive) {
			return bt.Failure, err
		}
		if err != nil {
			o.logger.Debug("tick published with errors", "error", err)
		}
		return FromStatus(status), nil
	})
}

type action struct {
	name string
	node bt.Node
	log  *slog.Logger
}

// Action registers a bt node as an arbor Action. A bt error is reported as
// Failure.
func Action(name string, n bt.Node, opts ...Option) domain.Action {
	return &action{name: name, node: n, log: newOptions(opts).logger}
}

func (a *action) Name() string { return a.name }

func (a *action) Execute() domain.Status {
	if a.node == nil {
		return domain.Failure
	}
	status, err := a.node.Tick()
	if err != nil {
		a.log.Warn("bt action failed", "action", a.name, "error", err)
		return domain.Failure
	}
	return ToStatus(status)
}

type sense struct {
	name string
	node bt.Node
}

// Sense registers a bt node as an arbor Sense: true only when the node
// ticks to Success without error.
func Sense(name string, n bt.Node) domain.Sense {
	return &sense{name: name, node: n}
}

func (s *sense) Name() string { return s.name }

func (s *sense) Evaluate() bool {
	if s.node == nil {
		return false
	}
	status, err := s.node.Tick()
	return err == nil && status == bt.Success
}
