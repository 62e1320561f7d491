package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func snapshot(agentID string, tick uint64, status domain.Status) *ports.Snapshot {
	return &ports.Snapshot{
		AgentID:     agentID,
		Tick:        tick,
		Status:      status,
		Description: "guard the vault",
		UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		Tree: &node.Snapshot{ID: "root", Kind: domain.KindRoot, Status: status, Children: []node.Snapshot{
			{ID: "open", Kind: domain.KindAction, Name: "OpenVault", Status: status},
		}},
	}
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	tests.SnapshotStoreContractTest(t, encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	want := snapshot("vault", 7, domain.Running)
	require.NoError(t, secure.Save(ctx, want))

	raw, err := underlying.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Empty(t, raw.Description)
	assert.Nil(t, raw.Tree)
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, uint64(7), raw.Tick)
	assert.Equal(t, domain.Running, raw.Status)
	assert.NotContains(t, string(raw.Sealed), "OpenVault")

	got, err := secure.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Tree, got.Tree)
	assert.Nil(t, got.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlying).Save(ctx, snapshot("vault", 1, domain.Success)))

	rotated := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})(underlying)
	got, err := rotated.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, "guard the vault", got.Description)

	wrong := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err = wrong.Load(ctx, "vault")
	assert.ErrorContains(t, err, "failed to decrypt")
}

func TestEncryptionMiddleware_FailSecure(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, snapshot("plain", 1, domain.Success)))

	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing its sealed payload")

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestNewEncryptionMiddleware_KeySize(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrKeySize)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t), FallbackKeys: [][]byte{{1}}})
	assert.ErrorIs(t, err, middleware.ErrKeySize)
}
