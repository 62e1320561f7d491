package middleware

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
)

type changesOnly struct {
	next   ports.SnapshotStore
	maxAge time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]saved
}

type saved struct {
	fp []string
	at time.Time
}

// ChangesOption configures ChangesOnly.
type ChangesOption func(*changesOnly)

// WithMaxAge writes an unchanged snapshot again once the last write is d
// old. Stores that expire entries (Redis TTL) need it to keep a long-running
// agent visible. Zero never rewrites.
func WithMaxAge(d time.Duration) ChangesOption {
	return func(c *changesOnly) {
		c.maxAge = d
	}
}

// WithClock replaces time.Now for the max age check.
func WithClock(now func() time.Time) ChangesOption {
	return func(c *changesOnly) {
		c.now = now
	}
}

// ChangesOnly skips a Save when no node status or resume index differs from
// the snapshot last saved for the same agent. A tree ticking RUNNING for a
// long time then costs a single write, or one per max age.
func ChangesOnly(opts ...ChangesOption) Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		c := &changesOnly{next: next, now: time.Now, last: make(map[string]saved)}
		for _, opt := range opts {
			opt(c)
		}
		return c
	}
}

// fingerprint lists every node as id, status and index, in walk order.
func fingerprint(snap *ports.Snapshot) []string {
	fp := []string{snap.Status.String()}
	snap.Tree.Walk(func(s *node.Snapshot, _ int) {
		entry := s.ID + "=" + s.Status.String()
		if s.Index != nil {
			entry += "@" + strconv.Itoa(*s.Index)
		}
		fp = append(fp, entry)
	})
	return fp
}

func (c *changesOnly) Save(ctx context.Context, snap *ports.Snapshot) error {
	fp := fingerprint(snap)
	now := c.now()

	c.mu.Lock()
	prev, ok := c.last[snap.AgentID]
	c.mu.Unlock()
	if ok && slices.Equal(prev.fp, fp) && (c.maxAge <= 0 || now.Sub(prev.at) < c.maxAge) {
		return nil
	}

	if err := c.next.Save(ctx, snap); err != nil {
		return err
	}
	c.mu.Lock()
	c.last[snap.AgentID] = saved{fp: fp, at: now}
	c.mu.Unlock()
	return nil
}

func (c *changesOnly) Load(ctx context.Context, agentID string) (*ports.Snapshot, error) {
	return c.next.Load(ctx, agentID)
}

func (c *changesOnly) Delete(ctx context.Context, agentID string) error {
	c.mu.Lock()
	delete(c.last, agentID)
	c.mu.Unlock()
	return c.next.Delete(ctx, agentID)
}

func (c *changesOnly) List(ctx context.Context) ([]string, error) {
	return c.next.List(ctx)
}
