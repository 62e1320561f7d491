package node

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// Resolver looks capabilities up by name. Implementations must not block.
type Resolver interface {
	Action(name string) (domain.Action, bool)
	Sense(name string) (domain.Sense, bool)
}

// Context is the capability-bound environment a tree is executed against
// for a single tick. A nil *Context is accepted by every node: leaves then
// report a configuration error and fail.
type Context struct {
	Context  context.Context
	Resolver Resolver
	Logger   *slog.Logger
	Hooks    domain.LifecycleHooks
	AgentID  string
	Tick     uint64
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (c *Context) ctx() context.Context {
	if c == nil || c.Context == nil {
		return context.Background()
	}
	return c.Context
}

func (c *Context) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return discard
	}
	return c.Logger
}

func (c *Context) base(t domain.EventType) domain.EventBase {
	b := domain.EventBase{Timestamp: time.Now(), Type: t}
	if c != nil {
		b.AgentID = c.AgentID
		b.Tick = c.Tick
	}
	return b
}

func (c *Context) enter(n Node) {
	if c == nil || c.Hooks.OnNodeEnter == nil {
		return
	}
	c.Hooks.OnNodeEnter(c.ctx(), &domain.NodeEvent{
		EventBase: c.base(domain.EventNodeEnter),
		NodeID:    n.ID(),
		Kind:      n.Kind(),
		Name:      nameOf(n),
	})
}

func (c *Context) leave(n Node, s domain.Status) {
	if c == nil || c.Hooks.OnNodeLeave == nil {
		return
	}
	c.Hooks.OnNodeLeave(c.ctx(), &domain.NodeEvent{
		EventBase: c.base(domain.EventNodeLeave),
		NodeID:    n.ID(),
		Kind:      n.Kind(),
		Name:      nameOf(n),
		Status:    s,
	})
}

// configError logs a non-fatal configuration problem and notifies the hooks.
func (c *Context) configError(n Node, name string, err error) {
	c.logger().Warn("behavior tree configuration error",
		"node_id", n.ID(),
		"kind", n.Kind(),
		"capability", name,
		"error", err)

	if c == nil || c.Hooks.OnConfigError == nil {
		return
	}
	c.Hooks.OnConfigError(c.ctx(), &domain.ConfigErrorEvent{
		EventBase: c.base(domain.EventConfigError),
		NodeID:    n.ID(),
		Name:      name,
		Err:       err,
	})
}

func (c *Context) resolver() Resolver {
	if c == nil {
		return nil
	}
	return c.Resolver
}
