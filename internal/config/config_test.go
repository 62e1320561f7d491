package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "arbor.yaml", `
blueprint: trees/guard.yaml
policy: strict
interval: 250ms
agent_id: guard-1
log:
  level: debug
  format: json
catalog:
  actions: [Chase, Patrol]
  senses: [CanSeeEnemy]
script: caps.yaml
snapshot_dir: /var/lib/arbor
redis:
  addr: localhost:6379
  prefix: "guard:"
  ttl: 1h
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "trees", "guard.yaml"), cfg.Blueprint)
	assert.Equal(t, filepath.Join(dir, "caps.yaml"), cfg.Script)
	assert.Equal(t, "/var/lib/arbor", cfg.SnapshotDir)
	assert.Equal(t, builder.Strict, cfg.PolicyValue())
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Interval))
	assert.Equal(t, "guard-1", cfg.AgentID)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"Chase", "Patrol"}, cfg.Catalog.Actions)
	assert.Equal(t, []string{"CanSeeEnemy"}, cfg.Catalog.Senses)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, time.Duration(cfg.Redis.TTL))
	// Defaults survive for unset fields.
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "arbor.json", `{"interval": "2s", "http": {"addr": ":9090"}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Interval))
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, builder.Lenient, cfg.PolicyValue())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad policy", "policy: loose\n", "unknown build policy"},
		{"bad interval", "interval: soon\n", "failed to parse"},
		{"zero interval", "interval: 0s\n", "interval must be positive"},
		{"bad level", "log:\n  level: loud\n", "unknown log level"},
		{"bad format", "log:\n  format: xml\n", "unknown log format"},
		{"max age over ttl", "redis:\n  ttl: 10s\nsnapshots:\n  max_age: 10s\n", "must be below the redis ttl"},
		{"negative max age", "snapshots:\n  max_age: -1s\n", "max age must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(write(t, "arbor.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}

func TestSnapshotMaxAge(t *testing.T) {
	cfg := config.Default()
	assert.Zero(t, cfg.SnapshotMaxAge())

	cfg.Redis = config.Redis{Addr: "localhost:6379", TTL: config.Duration(10 * time.Second)}
	assert.Equal(t, 5*time.Second, cfg.SnapshotMaxAge())

	cfg.Snapshots.MaxAge = config.Duration(2 * time.Second)
	assert.Equal(t, 2*time.Second, cfg.SnapshotMaxAge())
	assert.NoError(t, cfg.Validate())
}
