package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter   EventType = "node_enter"
	EventNodeLeave   EventType = "node_leave"
	EventTick        EventType = "tick"
	EventConfigError EventType = "config_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	AgentID   string    `json:"agent_id,omitempty"`
	Tick      uint64    `json:"tick"`
}

// NodeEvent represents entry into or exit from a node during a tick.
// Status is only set on leave.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Kind   Kind   `json:"kind"`
	Name   string `json:"name,omitempty"`
	Status Status `json:"status,omitempty"`
}

// TickEvent summarizes one complete tick.
type TickEvent struct {
	EventBase
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
}

// ConfigErrorEvent reports a non-fatal configuration problem.
type ConfigErrorEvent struct {
	EventBase
	NodeID string `json:"node_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for interpreter observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNodeEnter   func(context.Context, *NodeEvent)
	OnNodeLeave   func(context.Context, *NodeEvent)
	OnTick        func(context.Context, *TickEvent)
	OnConfigError func(context.Context, *ConfigErrorEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:   chain(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave:   chain(h.OnNodeLeave, other.OnNodeLeave),
		OnTick:        chain(h.OnTick, other.OnTick),
		OnConfigError: chain(h.OnConfigError, other.OnConfigError),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
