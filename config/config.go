// Package config loads the server configuration from an optional YAML file,
// then applies environment-variable overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error
	SnapshotDir string `yaml:"snapshot_dir"` // history snapshot scratch dir
	AuditDBPath string `yaml:"audit_db_path"`
	SerpAPIKey  string `yaml:"serpapi_key"`

	// HTTPAddr enables the operational HTTP surface when non-empty.
	HTTPAddr string `yaml:"http_addr"`
	// AdminPasswordHash is the bcrypt hash guarding the audit endpoints.
	AdminPasswordHash string `yaml:"admin_password_hash"`

	FeedTimeoutSeconds  int `yaml:"feed_timeout_seconds"`
	SearchCacheTTLHours int `yaml:"search_cache_ttl_hours"`
}

func (c *Config) defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = os.TempDir()
	}
	if c.AuditDBPath == "" {
		c.AuditDBPath = "sillage.db"
	}
	if c.FeedTimeoutSeconds <= 0 {
		c.FeedTimeoutSeconds = 15
	}
	if c.SearchCacheTTLHours <= 0 {
		c.SearchCacheTTLHours = 24
	}
}

// Load reads the YAML file at path when it is non-empty, applies environment
// overrides, and fills defaults. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()
		cfg, err = decode(f)
		if err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r with defaults applied.
// Useful in tests where configs are string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := decode(r)
	if err != nil {
		return nil, err
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields from SILLAGE_* variables (SERPAPI_KEY also
// honors the bare conventional name).
func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setStr(&c.LogLevel, "SILLAGE_LOG_LEVEL")
	setStr(&c.SnapshotDir, "SILLAGE_SNAPSHOT_DIR")
	setStr(&c.AuditDBPath, "SILLAGE_AUDIT_DB")
	setStr(&c.SerpAPIKey, "SILLAGE_SERPAPI_KEY")
	setStr(&c.SerpAPIKey, "SERPAPI_KEY")
	setStr(&c.HTTPAddr, "SILLAGE_HTTP_ADDR")
	setStr(&c.AdminPasswordHash, "SILLAGE_ADMIN_PASSWORD_HASH")

	if v := os.Getenv("SILLAGE_FEED_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FeedTimeoutSeconds = n
		}
	}
	if v := os.Getenv("SILLAGE_SEARCH_CACHE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SearchCacheTTLHours = n
		}
	}
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level %q is invalid; valid values: debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
