package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns a snapshot of a small running tree for agentID.
func sample(agentID string, tick uint64) *ports.Snapshot {
	index := 1
	return &ports.Snapshot{
		AgentID:     agentID,
		Tick:        tick,
		Status:      domain.Running,
		Description: "chase enemies in sight",
		UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		Tree: &node.Snapshot{
			ID:     "root",
			Kind:   domain.KindRoot,
			Status: domain.Running,
			Children: []node.Snapshot{{
				ID:     "seq",
				Kind:   domain.KindStatefulSequence,
				Status: domain.Running,
				Index:  &index,
				Children: []node.Snapshot{
					{ID: "see", Kind: domain.KindSense, Name: "CanSeeEnemy", Status: domain.Success},
					{ID: "chase", Kind: domain.KindAction, Name: "Chase", Status: domain.Running},
				},
			}},
		},
	}
}

// SnapshotStoreContractTest is a reusable test suite that verifies if an
// adapter complies with ports.SnapshotStore.
func SnapshotStoreContractTest(t *testing.T, store ports.SnapshotStore) {
	t.Helper()
	ctx := context.Background()
	agentID := "contract-agent-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		want := sample(agentID, 3)
		require.NoError(t, store.Save(ctx, want))

		got, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, want.AgentID, got.AgentID)
		assert.Equal(t, want.Tick, got.Tick)
		assert.Equal(t, domain.Running, got.Status)
		assert.Equal(t, want.Description, got.Description)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
		assert.Equal(t, want.Tree, got.Tree)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		next := sample(agentID, 4)
		next.Status = domain.Failure
		require.NoError(t, store.Save(ctx, next))

		got, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), got.Tick)
		assert.Equal(t, domain.Failure, got.Status)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		got, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		got.Tree.Children[0].Status = domain.Failure

		again, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, domain.Running, again.Tree.Children[0].Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+agentID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(agentID, 5)))
		require.NoError(t, store.Delete(ctx, agentID))

		_, err := store.Load(ctx, agentID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
		assert.NoError(t, store.Delete(ctx, agentID), "Delete of a missing agent should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := agentID + "-1"
		id2 := agentID + "-2"
		require.NoError(t, store.Save(ctx, sample(id1, 1)))
		require.NoError(t, store.Save(ctx, sample(id2, 1)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		agents, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, agents, id1)
		assert.Contains(t, agents, id2)
	})

	t.Run("Ordinary IDs Resembling Internals", func(t *testing.T) {
		ids := []string{"index", "tmp-guard"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, sample(id, 1)), id)
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		for _, id := range ids {
			got, err := store.Load(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, id, got.AgentID)
		}
		agents, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			assert.Contains(t, agents, id)
		}
	})
}
