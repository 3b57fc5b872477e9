package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its config
const DefaultPath = "/etc/mediasort/config.toml"

// Config holds all mediasort configuration
type Config struct {
	DirWatch    string            `toml:"dir_watch" yaml:"dir_watch"`
	ShowPath    string            `toml:"show_path" yaml:"show_path"`
	MoviePath   string            `toml:"movie_path" yaml:"movie_path"`
	Overwrite   bool              `toml:"overwrite" yaml:"overwrite"`
	Permissions PermissionsConfig `toml:"permissions" yaml:"permissions"`
	OMDb        OMDbConfig        `toml:"omdb" yaml:"omdb"`
	TVMaze      TVMazeConfig      `toml:"tvmaze" yaml:"tvmaze"`
	Timeout     time.Duration     `toml:"timeout" yaml:"timeout"`     // provider HTTP timeout, 0 = none
	LockFile    string            `toml:"lock_file" yaml:"lock_file"` // single-instance lock for watch and sort
	Log         LogConfig         `toml:"log" yaml:"log"`
	Watch       WatchConfig       `toml:"watch" yaml:"watch"`
}

// PermissionsConfig is applied to placed files and their new parent directories
type PermissionsConfig struct {
	Mode  FileMode `toml:"mode" yaml:"mode"`
	User  string   `toml:"user,omitempty" yaml:"user,omitempty"`
	Group string   `toml:"group,omitempty" yaml:"group,omitempty"`
}

// OMDbConfig configures the movie provider
type OMDbConfig struct {
	APIKey            string  `toml:"apikey" yaml:"apikey"`
	BaseURL           string  `toml:"base_url,omitempty" yaml:"base_url,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// TVMazeConfig configures the show provider
type TVMazeConfig struct {
	BaseURL           string  `toml:"base_url,omitempty" yaml:"base_url,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`                   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"`                 // console or json
	File   string `toml:"file,omitempty" yaml:"file,omitempty"` // empty logs to stderr
}

// WatchConfig selects the filesystem event backend
type WatchConfig struct {
	Backend string        `toml:"backend" yaml:"backend"` // inotify or fsnotify
	Settle  time.Duration `toml:"settle" yaml:"settle"`   // fsnotify quiet period
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Permissions: PermissionsConfig{
			Mode: 0o644,
		},
		TVMaze: TVMazeConfig{
			RequestsPerSecond: 2,
		},
		OMDb: OMDbConfig{
			RequestsPerSecond: 2,
		},
		LockFile: filepath.Join(os.TempDir(), "mediasort.lock"),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Backend: "inotify",
			Settle:  2 * time.Second,
		},
	}
}

// isYAML reports whether path should be read as YAML rather than TOML
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads the config at path over the defaults. Files ending in .yaml or
// .yml are YAML, everything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
		}
	}

	return cfg, nil
}

// Save writes the config to path, creating the parent directory
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg, path)
	if err != nil {
		return err
	}

	// the file holds an API key
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the format implied by path's extension
func Marshal(cfg *Config, path string) ([]byte, error) {
	if isYAML(path) {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return data, nil
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks that the config can drive a run
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"dir_watch", c.DirWatch},
		{"show_path", c.ShowPath},
		{"movie_path", c.MoviePath},
		{"omdb.apikey", c.OMDb.APIKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	if c.Permissions.Mode > 0o7777 {
		return fmt.Errorf("invalid permissions.mode: %s", c.Permissions.Mode)
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn or error)", c.Log.Level)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %s (must be console or json)", c.Log.Format)
	}

	switch c.Watch.Backend {
	case "inotify", "fsnotify":
	default:
		return fmt.Errorf("invalid watch.backend: %s (must be inotify or fsnotify)", c.Watch.Backend)
	}

	if c.Timeout < 0 || c.Watch.Settle < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.OMDb.RequestsPerSecond < 0 || c.TVMaze.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}

	return nil
}
