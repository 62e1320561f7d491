package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// CommandConfig declares one command-backed capability.
type CommandConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	// Timeout overrides the runner timeout, e.g. "500ms".
	Timeout string `yaml:"timeout" json:"timeout"`
}

func (c CommandConfig) timeout(fallback time.Duration) (time.Duration, error) {
	if c.Timeout == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("capability %q: invalid timeout: %w", c.Name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("capability %q: timeout must be positive, got %s", c.Name, d)
	}
	return d, nil
}

// ConfigFile represents the structure of capabilities.yaml.
type ConfigFile struct {
	Actions []CommandConfig `yaml:"actions" json:"actions"`
	Senses  []CommandConfig `yaml:"senses" json:"senses"`
}

// LoadCommands reads a capability file (YAML or JSON). A missing file is
// treated as an empty one.
func LoadCommands(path string) (ConfigFile, error) {
	var cfg ConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read capabilities config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
