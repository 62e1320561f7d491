package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	ports.SnapshotStore
	saves int
}

func (c *countingStore) Save(ctx context.Context, snap *ports.Snapshot) error {
	c.saves++
	return c.SnapshotStore.Save(ctx, snap)
}

func TestChangesOnly(t *testing.T) {
	counting := &countingStore{SnapshotStore: memory.NewStore()}
	store := middleware.ChangesOnly()(counting)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("a", 1, domain.Running)))
	require.NoError(t, store.Save(ctx, snapshot("a", 2, domain.Running)))
	require.NoError(t, store.Save(ctx, snapshot("a", 3, domain.Running)))
	assert.Equal(t, 1, counting.saves)

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Tick)

	require.NoError(t, store.Save(ctx, snapshot("a", 4, domain.Success)))
	require.NoError(t, store.Save(ctx, snapshot("b", 4, domain.Success)))
	assert.Equal(t, 3, counting.saves)

	// A deleted agent is written again on its next save.
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Save(ctx, snapshot("a", 5, domain.Success)))
	assert.Equal(t, 4, counting.saves)

	agents, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, agents)
}

func TestChangesOnly_MaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	counting := &countingStore{SnapshotStore: memory.NewStore()}
	store := middleware.ChangesOnly(
		middleware.WithMaxAge(5*time.Second),
		middleware.WithClock(func() time.Time { return now }),
	)(counting)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("a", 1, domain.Running)))
	now = now.Add(4 * time.Second)
	require.NoError(t, store.Save(ctx, snapshot("a", 2, domain.Running)))
	assert.Equal(t, 1, counting.saves)

	now = now.Add(4 * time.Second)
	require.NoError(t, store.Save(ctx, snapshot("a", 3, domain.Running)))
	assert.Equal(t, 2, counting.saves)

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Tick)
}

func TestChangesOnly_RedisTTL(t *testing.T) {
	tests := []struct {
		name    string
		maxAge  time.Duration
		wantErr error
	}{
		{"without max age the entry expires", 0, domain.ErrSnapshotNotFound},
		{"max age below ttl keeps it alive", 5 * time.Second, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })

			now := time.Now()
			store := middleware.Chain(
				redis.NewFromClient(client, redis.WithTTL(10*time.Second)),
				middleware.ChangesOnly(
					middleware.WithMaxAge(tt.maxAge),
					middleware.WithClock(func() time.Time { return now }),
				),
			)
			ctx := context.Background()

			// A worker stuck in RUNNING produces identical snapshots.
			for tick := uint64(1); tick <= 5; tick++ {
				require.NoError(t, store.Save(ctx, snapshot("worker", tick, domain.Running)))
				mr.FastForward(4 * time.Second)
				now = now.Add(4 * time.Second)
			}

			got, err := store.Load(ctx, "worker")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(5), got.Tick)
		})
	}
}

func TestChain(t *testing.T) {
	counting := &countingStore{SnapshotStore: memory.NewStore()}
	store := middleware.Chain(counting, middleware.ChangesOnly(), encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("a", 1, domain.Running)))
	require.NoError(t, store.Save(ctx, snapshot("a", 2, domain.Running)))
	assert.Equal(t, 1, counting.saves)

	raw, err := counting.Load(ctx, "a")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "guard the vault", got.Description)
}
