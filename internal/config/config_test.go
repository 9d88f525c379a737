package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Chart.Variant != "single" {
		t.Fatalf("variant = %q, want single", cfg.Chart.Variant)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("theme = %q, want flexoki-dark", cfg.Appearance.Theme)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fireplot", "config.toml")

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://calc.local:9000"
	cfg.Server.TimeoutSec = 15
	cfg.Chart.Variant = "dual"
	cfg.Form.Defaults = map[string]string{"currentAge": "40"}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("base_url = %q, want %q", got.Server.BaseURL, cfg.Server.BaseURL)
	}
	if got.Server.Timeout() != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", got.Server.Timeout())
	}
	if got.Chart.Variant != "dual" {
		t.Errorf("variant = %q, want dual", got.Chart.Variant)
	}
	if got.Form.Defaults["currentAge"] != "40" {
		t.Errorf("defaults = %v", got.Form.Defaults)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nbase_url ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetServerURL_Precedence(t *testing.T) {
	t.Setenv(EnvServer, "")
	cfg := DefaultConfig()
	if got := GetServerURL(cfg); got != DefaultServerURL {
		t.Errorf("default = %q", got)
	}

	cfg.Server.BaseURL = "http://from-config"
	if got := GetServerURL(cfg); got != "http://from-config" {
		t.Errorf("config = %q", got)
	}

	t.Setenv(EnvServer, "http://from-env")
	if got := GetServerURL(cfg); got != "http://from-env" {
		t.Errorf("env = %q", got)
	}
}

func TestServerTimeout_ZeroMeansNone(t *testing.T) {
	if d := (ServerConfig{}).Timeout(); d != 0 {
		t.Fatalf("timeout = %v, want 0", d)
	}
	if d := (ServerConfig{TimeoutSec: -3}).Timeout(); d != 0 {
		t.Fatalf("timeout = %v, want 0", d)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte(EnvServer+"=http://dotenv:8080\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvServer, "")
	os.Unsetenv(EnvServer)
	if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv(EnvServer); got != "http://dotenv:8080" {
		t.Fatalf("%s = %q", EnvServer, got)
	}

	t.Setenv(EnvServer, "http://already-set")
	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv(EnvServer); got != "http://already-set" {
		t.Fatalf("existing variable overridden: %q", got)
	}
}

func TestDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Dir(); got != filepath.Join("/tmp/xdg", "fireplot") {
		t.Fatalf("Dir = %q", got)
	}
	if got := Path(); got != filepath.Join("/tmp/xdg", "fireplot", "config.toml") {
		t.Fatalf("Path = %q", got)
	}
}
