package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/google/uuid"
)

// Driver owns one behavior tree and the capabilities bound to it, and
// executes the root once per Tick. It does not decide anything based on the
// resulting status; that is left to whoever drives the ticks.
//
// A Driver is safe for concurrent use: readers (HTTP, MCP) may inspect it
// while another goroutine ticks. Ticks themselves are serialized.
//
// Node hooks run while the tree is evaluated and the driver is locked; they
// must not call back into the Driver. OnTick hooks, the snapshot store and
// the reporter run after the lock is released and may read it freely.
type Driver struct {
	// tickMu serializes Activate and Tick; mu guards the fields below.
	tickMu sync.Mutex
	mu     sync.Mutex

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	agentID  string
	store    ports.SnapshotStore
	reporter Reporter

	tree     *node.BehaviorTree
	registry *registry.Registry
	status   domain.Status
	ticks    uint64
	last     *ports.Snapshot
}

// New creates an inactive Driver.
func New(opts ...Option) *Driver {
	d := &Driver{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.agentID == "" {
		d.agentID = uuid.NewString()
	}
	return d
}

// AgentID returns the id snapshots are published under.
func (d *Driver) AgentID() string { return d.agentID }

// Activate binds tree to the capabilities of source and resets it once.
// Capability naming problems (empty or duplicate names) are configuration
// errors: they are logged and reported through OnConfigError, the offending
// provider is skipped and activation proceeds.
//
// Activating again replaces the tree and restarts the tick counter.
func (d *Driver) Activate(ctx context.Context, tree *node.BehaviorTree, source registry.Source) error {
	if tree == nil || tree.Root == nil {
		return domain.ErrNoTree
	}

	reg, errs := registry.Bind(source, d.logger)

	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.mu.Lock()
	d.tree = tree
	d.registry = reg
	d.ticks = 0
	d.last = nil
	tree.Reset()
	d.status = tree.Root.Status()
	d.mu.Unlock()

	for _, err := range errs {
		d.configError(ctx, err)
	}

	d.logger.Info("behavior tree activated",
		"agent", d.agentID,
		"nodes", len(tree.Nodes()),
		"actions", len(reg.ActionNames()),
		"senses", len(reg.SenseNames()),
		"config_errors", len(errs))
	return nil
}

func (d *Driver) configError(ctx context.Context, err error) {
	if d.hooks.OnConfigError == nil {
		return
	}
	d.hooks.OnConfigError(ctx, &domain.ConfigErrorEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventConfigError,
			AgentID:   d.agentID,
		},
		Err: err,
	})
}

// Tick executes the root exactly once and retains its status.
//
// The returned error is only about publishing (snapshot store, reporter);
// it never changes the tick status. ErrNotActive is returned before Activate.
func (d *Driver) Tick(ctx context.Context) (domain.Status, error) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.mu.Lock()
	if d.tree == nil {
		d.mu.Unlock()
		return domain.StatusInvalid, domain.ErrNotActive
	}

	d.ticks++
	start := time.Now()
	tc := &node.Context{
		Context:  ctx,
		Resolver: d.registry,
		Logger:   d.logger,
		Hooks:    d.hooks,
		AgentID:  d.agentID,
		Tick:     d.ticks,
	}
	status := d.tree.Root.Execute(tc)
	elapsed := time.Since(start)
	d.status = status
	tick := d.ticks
	d.last = d.capture()
	snap := d.last.Clone()
	d.mu.Unlock()

	if d.hooks.OnTick != nil {
		d.hooks.OnTick(ctx, &domain.TickEvent{
			EventBase: domain.EventBase{
				Timestamp: start,
				Type:      domain.EventTick,
				AgentID:   d.agentID,
				Tick:      tick,
			},
			Status:   status,
			Duration: elapsed,
		})
	}
	d.logger.Debug("tick", "agent", d.agentID, "tick", tick, "status", status, "duration", elapsed)

	var errs []error
	if d.store != nil {
		if err := d.store.Save(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("publish snapshot: %w", err))
		}
	}
	if d.reporter != nil {
		if err := d.reporter.Report(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("report tick: %w", err))
		}
	}
	if len(errs) > 0 {
		d.logger.Warn("tick side effects failed", "agent", d.agentID, "tick", tick, "err", errors.Join(errs...))
	}
	return status, errors.Join(errs...)
}

// capture must be called with mu held.
func (d *Driver) capture() *ports.Snapshot {
	return &ports.Snapshot{
		AgentID:     d.agentID,
		Tick:        d.ticks,
		Status:      d.status,
		Description: d.tree.Description,
		UpdatedAt:   time.Now().UTC(),
		Tree:        d.tree.Snapshot(),
	}
}

// Run ticks at a fixed cadence until ctx is done, modeling a per-frame
// update loop. Publishing errors are logged and do not stop the loop.
func (d *Driver) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	if !d.Active() {
		return domain.ErrNotActive
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Errors are already logged by Tick.
			_, _ = d.Tick(ctx)
		}
	}
}

// Active reports whether a tree has been activated.
func (d *Driver) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree != nil
}

// Status returns the status of the last tick. Before the first tick it is
// the root's initial status; before Activate it is StatusInvalid.
func (d *Driver) Status() domain.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Ticks returns the number of ticks since activation.
func (d *Driver) Ticks() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ticks
}

// Tree returns the active tree, or nil.
func (d *Driver) Tree() *node.BehaviorTree {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree
}

// Registry returns the capabilities bound at activation, or nil.
func (d *Driver) Registry() *registry.Registry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry
}

// Snapshot returns a copy of the state after the last tick, or of the
// freshly activated tree. It returns nil before Activate.
func (d *Driver) Snapshot() *ports.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree == nil {
		return nil
	}
	if d.last == nil {
		return d.capture()
	}
	return d.last.Clone()
}
