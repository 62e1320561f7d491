package ports

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// Snapshot is what a driver publishes after each tick: the tree's overall
// status plus the per-node statuses and resumption indices.
type Snapshot struct {
	AgentID     string         `json:"agent_id" yaml:"agent_id"`
	Tick        uint64         `json:"tick" yaml:"tick"`
	Status      domain.Status  `json:"status" yaml:"status"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
	Tree        *node.Snapshot `json:"tree" yaml:"tree"`

	// Sealed holds Description and Tree in encrypted form when the store is
	// wrapped with encryption; both are then left empty.
	Sealed []byte `json:"sealed,omitempty" yaml:"sealed,omitempty"`
}

// SnapshotStore persists the latest snapshot of each agent.
// Stores only ever see data after tree evaluation returned; they are never
// called while a tree is executing.
type SnapshotStore interface {
	// Save replaces the snapshot stored for snap.AgentID.
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves the snapshot of an agent.
	// Returns domain.ErrSnapshotNotFound if none was saved.
	Load(ctx context.Context, agentID string) (*Snapshot, error)

	// Delete removes the snapshot of an agent. Deleting a missing agent is not an error.
	Delete(ctx context.Context, agentID string) error

	// List returns the ids of agents with a stored snapshot.
	List(ctx context.Context) ([]string, error)
}

// Clone returns a deep copy of s, tree included.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Tree = s.Tree.Clone()
	if s.Sealed != nil {
		c.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &c
}
