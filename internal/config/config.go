package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvServer overrides the configured server URL.
const EnvServer = "FIREPLOT_SERVER"

// DefaultServerURL is used when neither the environment nor the config file
// names a server.
const DefaultServerURL = "http://localhost:8080"

// Config holds all fireplot configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Chart      ChartConfig      `toml:"chart"`
	Appearance AppearanceConfig `toml:"appearance"`
	Form       FormConfig       `toml:"form"`
}

// ServerConfig holds the projection endpoint settings.
type ServerConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	// TimeoutSec bounds each request. Zero means no timeout.
	TimeoutSec int `toml:"timeout_sec,omitempty"`
}

// ChartConfig holds chart defaults.
type ChartConfig struct {
	Variant string `toml:"variant"`
	// Width and Height size image output in pixels.
	Width  int `toml:"width,omitempty"`
	Height int `toml:"height,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// FormConfig holds default form input.
type FormConfig struct {
	// Preset is a YAML file of field values loaded before Defaults.
	Preset   string            `toml:"preset,omitempty"`
	Defaults map[string]string `toml:"defaults,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSec) * time.Second
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Chart: ChartConfig{
			Variant: "single",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fireplot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fireplot")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LogPath returns where the TUI writes its log.
func LogPath() string {
	return filepath.Join(Dir(), "fireplot.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetServerURL returns the server URL from env var, config or the default,
// in that order.
func GetServerURL(cfg Config) string {
	if u := os.Getenv(EnvServer); u != "" {
		return u
	}
	if cfg.Server.BaseURL != "" {
		return cfg.Server.BaseURL
	}
	return DefaultServerURL
}

// LoadEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env", filepath.Join(Dir(), ".env")}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
