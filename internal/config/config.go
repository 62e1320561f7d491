// Package config loads the arbor.yaml service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/builder"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "arbor.yaml"

// Duration is a time.Duration written as "500ms" or "2s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Catalog lists the capability names a generated tree may reference.
type Catalog struct {
	Actions []string `yaml:"actions" json:"actions"`
	Senses  []string `yaml:"senses" json:"senses"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Redis configures the redis snapshot store. It is disabled without Addr.
type Redis struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// Snapshots configures how snapshots are written, whatever the store.
type Snapshots struct {
	// ChangesOnly skips writes when no node status changed.
	ChangesOnly bool `yaml:"changes_only" json:"changes_only"`
	// MaxAge rewrites an unchanged snapshot after this long. Defaults to
	// half the redis ttl when one is set.
	MaxAge Duration `yaml:"max_age" json:"max_age"`
	// KeyEnv names an environment variable holding a hex-encoded 32-byte
	// key. When set, snapshots are sealed with AES-GCM.
	KeyEnv string `yaml:"key_env" json:"key_env"`
}

// HTTP configures the inspection server.
type HTTP struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Config is the full service configuration.
type Config struct {
	Blueprint   string    `yaml:"blueprint" json:"blueprint"`
	Policy      string    `yaml:"policy" json:"policy"`
	Interval    Duration  `yaml:"interval" json:"interval"`
	AgentID     string    `yaml:"agent_id" json:"agent_id"`
	Log         Log       `yaml:"log" json:"log"`
	Catalog     Catalog   `yaml:"catalog" json:"catalog"`
	Script      string    `yaml:"script" json:"script"`
	Commands    string    `yaml:"commands" json:"commands"`
	SnapshotDir string    `yaml:"snapshot_dir" json:"snapshot_dir"`
	Snapshots   Snapshots `yaml:"snapshots" json:"snapshots"`
	Redis       Redis     `yaml:"redis" json:"redis"`
	HTTP        HTTP      `yaml:"http" json:"http"`
}

// Default returns the configuration used for unset fields.
func Default() Config {
	return Config{
		Policy:   builder.Lenient.String(),
		Interval: Duration(time.Second),
		Log:      Log{Level: "info", Format: "text"},
		HTTP:     HTTP{Addr: ":8080"},
	}
}

// Load reads path over the defaults. Relative file references are resolved
// against the directory of path.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Blueprint, &cfg.Script, &cfg.Commands, &cfg.SnapshotDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	var errs []error
	if _, err := builder.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", time.Duration(c.Interval)))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, errors.New("redis ttl must not be negative"))
	}
	if c.Snapshots.MaxAge < 0 {
		errs = append(errs, errors.New("snapshot max age must not be negative"))
	}
	if c.Redis.TTL > 0 && c.Snapshots.MaxAge >= c.Redis.TTL {
		errs = append(errs, fmt.Errorf("snapshot max age %s must be below the redis ttl %s",
			time.Duration(c.Snapshots.MaxAge), time.Duration(c.Redis.TTL)))
	}
	return errors.Join(errs...)
}

// SnapshotMaxAge returns how long ChangesOnly may skip an unchanged
// snapshot. Zero means forever.
func (c Config) SnapshotMaxAge() time.Duration {
	if c.Snapshots.MaxAge > 0 {
		return time.Duration(c.Snapshots.MaxAge)
	}
	if c.Redis.Addr != "" && c.Redis.TTL > 0 {
		return time.Duration(c.Redis.TTL) / 2
	}
	return 0
}

// PolicyValue returns the parsed build policy.
func (c Config) PolicyValue() builder.Policy {
	p, _ := builder.ParsePolicy(c.Policy)
	return p
}
