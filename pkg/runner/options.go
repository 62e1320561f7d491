package runner

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Option defines a functional option for configuring the Driver.
type Option func(*Driver)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithHooks adds lifecycle hooks. Repeated calls are merged in order.
// Node hooks run with the driver locked and must not call back into it.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Driver) {
		d.hooks = d.hooks.Merge(hooks)
	}
}

// WithAgentID names the agent the driver ticks for. Defaults to a random UUID.
func WithAgentID(id string) Option {
	return func(d *Driver) {
		d.agentID = id
	}
}

// WithSnapshotStore publishes a snapshot to store after every tick.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(d *Driver) {
		d.store = store
	}
}

// WithReporter hands every tick snapshot to r, e.g. to print it. The
// snapshot is a copy and r runs outside the driver lock.
func WithReporter(r Reporter) Option {
	return func(d *Driver) {
		d.reporter = r
	}
}
