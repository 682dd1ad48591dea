package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Backend names accepted by the "backend" key.
const (
	BackendBeep = "beep"
	BackendVLC  = "vlc"
)

// Config is the application configuration, loaded from TOML over Default.
type Config struct {
	Backend          string `koanf:"backend"`            // "beep" or "vlc"
	Theme            string `koanf:"theme"`              // "light" or "dark"
	LogLevel         string `koanf:"log_level"`          // zerolog level name
	PollIntervalMs   int    `koanf:"poll_interval_ms"`   // progress poll period
	PrepareTimeoutMs int    `koanf:"prepare_timeout_ms"` // beep: probe + download budget
	MaxBufferMB      int    `koanf:"max_buffer_mb"`      // beep: largest body kept in memory; larger ones stream live

	Window  WindowConfig  `koanf:"window"`
	Discord DiscordConfig `koanf:"discord"`
}

type WindowConfig struct {
	Width  float32 `koanf:"width"`
	Height float32 `koanf:"height"`
}

// DiscordConfig enables Rich Presence when Enabled is set.
type DiscordConfig struct {
	Enabled  bool   `koanf:"enabled"`
	ClientID string `koanf:"client_id"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Backend:          BackendBeep,
		Theme:            "light",
		LogLevel:         "info",
		PollIntervalMs:   500,
		PrepareTimeoutMs: 15000,
		MaxBufferMB:      64,
		Window: WindowConfig{
			Width:  420,
			Height: 240,
		},
	}
}

// PollInterval is the period of the progress poll task.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) PrepareTimeout() time.Duration {
	return time.Duration(c.PrepareTimeoutMs) * time.Millisecond
}

// MaxBufferBytes converts MaxBufferMB to bytes.
func (c *Config) MaxBufferBytes() int64 {
	return int64(c.MaxBufferMB) << 20
}

// Load reads the default config locations in priority order (last wins).
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles merges the given TOML files over the defaults. Missing files are
// skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBeep, BackendVLC:
	default:
		return fmt.Errorf("invalid backend %q: must be %q or %q", c.Backend, BackendBeep, BackendVLC)
	}
	if c.Theme != "light" && c.Theme != "dark" {
		return fmt.Errorf("invalid theme %q: must be \"light\" or \"dark\"", c.Theme)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs)
	}
	if c.PrepareTimeoutMs <= 0 {
		return fmt.Errorf("prepare_timeout_ms must be positive, got %d", c.PrepareTimeoutMs)
	}
	if c.MaxBufferMB <= 0 {
		return fmt.Errorf("max_buffer_mb must be positive, got %d", c.MaxBufferMB)
	}
	if c.Discord.Enabled && c.Discord.ClientID == "" {
		return fmt.Errorf("discord.client_id is required when discord.enabled is set")
	}
	return nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/linkplayer/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "linkplayer", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
