// # internal/core/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is looked up in the project root when no --config flag is
// given.
const DefaultFileName = "pawnlens.toml"

type Config struct {
	Version int      `toml:"version"`
	Paths   Paths    `toml:"paths"`
	Stdlib  Stdlib   `toml:"stdlib"`
	Exclude Exclude  `toml:"exclude"`
	Watch   Watch    `toml:"watch"`
	Server  Server   `toml:"server"`
	Metrics Metrics  `toml:"metrics"`
	DB      Database `toml:"db"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	CacheDir    string `toml:"cache_dir"`
}

// Stdlib points at the standard-library include tree. Files under Root are
// indexed once at startup into the builtin namespace.
type Stdlib struct {
	Enabled *bool  `toml:"enabled"`
	Root    string `toml:"root"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Enabled    bool          `toml:"enabled"`
	Debounce   time.Duration `toml:"debounce"`
	Extensions []string      `toml:"extensions"`
}

type Server struct {
	Transport string  `toml:"transport"`
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Driver      string        `toml:"driver"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

func (s Stdlib) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateServer(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateMetrics(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = ".pawnlens"
	}

	if strings.TrimSpace(cfg.Stdlib.Root) == "" {
		cfg.Stdlib.Root = "scripting/include"
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", ".pawnlens"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = []string{".sp", ".inc"}
	}

	if strings.TrimSpace(cfg.Server.Transport) == "" {
		cfg.Server.Transport = "stdio"
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 50
	}
	if cfg.Server.RateBurst <= 0 {
		cfg.Server.RateBurst = 100
	}

	if strings.TrimSpace(cfg.Metrics.Address) == "" {
		cfg.Metrics.Address = "127.0.0.1:9471"
	}

	if strings.TrimSpace(cfg.DB.Driver) == "" {
		cfg.DB.Driver = "sqlite"
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "snapshots.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	return nil
}

func validateServer(cfg *Config) error {
	transport := strings.ToLower(strings.TrimSpace(cfg.Server.Transport))
	if transport != "stdio" {
		return fmt.Errorf("server.transport must be stdio, got %q", cfg.Server.Transport)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	for _, ext := range cfg.Watch.Extensions {
		clean := strings.TrimSpace(ext)
		if clean == "" || !strings.HasPrefix(clean, ".") {
			return fmt.Errorf("watch.extensions entries must start with a dot, got %q", ext)
		}
	}
	return nil
}

func validateMetrics(cfg *Config) error {
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Address) == "" {
		return fmt.Errorf("metrics.address must not be empty when metrics.enabled=true")
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	driver := strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if driver != "sqlite" {
		return fmt.Errorf("db.driver must be sqlite, got %q", cfg.DB.Driver)
	}
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}
	return nil
}
