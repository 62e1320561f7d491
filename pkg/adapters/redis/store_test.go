package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func snapshot(agentID string) *ports.Snapshot {
	return &ports.Snapshot{
		AgentID:   agentID,
		Tick:      1,
		Status:    domain.Running,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.SnapshotStoreContractTest(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("agent-ttl")))

	agents, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, agents, "agent-ttl")

	// Key expiry is driven by miniredis time.
	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "agent-ttl")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// Index pruning uses wall clock time.
	time.Sleep(1200 * time.Millisecond)
	agents, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("guard")))
	assert.True(t, mr.Exists("custom:app:agent:guard"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	raw, err := mr.Get("custom:app:agent:guard")
	require.NoError(t, err)
	assert.Contains(t, raw, `"status":"RUNNING"`)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"guard"}, list)
}

func TestRedisStore_AgentNamedLikeIndex(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("guard")))
	require.NoError(t, store.Save(ctx, snapshot("index")))

	got, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", got.AgentID)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"guard", "index"}, list)
	assert.Equal(t, []string{
		"arbor:snapshot:agent:guard",
		"arbor:snapshot:agent:index",
		"arbor:snapshot:index",
	}, mr.Keys())
}

func TestRedisStore_RejectsAnonymousSnapshot(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	assert.Error(t, store.Save(context.Background(), snapshot("")))
}
