// # internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pawnlens.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[paths]
project_root = "./addons/sourcemod/scripting"

[stdlib]
root = "./include"

[exclude]
dirs = [".git"]
files = ["*.bak"]

[watch]
enabled = true
debounce = "1s"

[server]
rate_limit = 25.0

[metrics]
enabled = true
address = "127.0.0.1:9999"

[db]
enabled = true
path = "cache/snapshots.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Paths.ProjectRoot != "./addons/sourcemod/scripting" {
		t.Errorf("project_root = %q", cfg.Paths.ProjectRoot)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("debounce = %v, want 1s", cfg.Watch.Debounce)
	}
	if cfg.Server.RateLimit != 25.0 {
		t.Errorf("rate_limit = %v", cfg.Server.RateLimit)
	}
	if cfg.Metrics.Address != "127.0.0.1:9999" {
		t.Errorf("metrics address = %q", cfg.Metrics.Address)
	}
	if cfg.DB.Path != "cache/snapshots.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Transport != "stdio" {
		t.Errorf("transport = %q", cfg.Server.Transport)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce default = %v", cfg.Watch.Debounce)
	}
	if len(cfg.Watch.Extensions) != 2 {
		t.Errorf("extensions default = %v", cfg.Watch.Extensions)
	}
	if !cfg.Stdlib.IsEnabled() {
		t.Error("stdlib should default to enabled")
	}
	if cfg.DB.BusyTimeout != 5*time.Second {
		t.Errorf("busy timeout default = %v", cfg.DB.BusyTimeout)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	_, err := Load(writeConfig(t, "version = 9\n"))
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestLoadRejectsBadTransport(t *testing.T) {
	_, err := Load(writeConfig(t, "[server]\ntransport = \"http\"\n"))
	if err == nil || !strings.Contains(err.Error(), "transport") {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestLoadRejectsBadExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "[watch]\nextensions = [\"sp\"]\n"))
	if err == nil || !strings.Contains(err.Error(), "extensions") {
		t.Errorf("expected extension error, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.RateLimit <= 0 || cfg.Server.RateBurst <= 0 {
		t.Errorf("rate defaults = %v/%v", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}
	if cfg.Stdlib.Root == "" {
		t.Error("stdlib root default missing")
	}
}
