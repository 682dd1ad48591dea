package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFiles_NoFilesUsesDefaults(t *testing.T) {
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 15*time.Second, cfg.PrepareTimeout())
	assert.Equal(t, int64(64<<20), cfg.MaxBufferBytes())
}

func TestLoadFiles_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend = "VLC"
theme = "dark"
poll_interval_ms = 250

[window]
width = 800

[discord]
enabled = true
client_id = "123"
`)

	cfg, err := LoadFiles(path)
	require.NoError(t, err)

	assert.Equal(t, BackendVLC, cfg.Backend)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, float32(800), cfg.Window.Width)
	assert.Equal(t, float32(240), cfg.Window.Height, "unset keys keep defaults")
	assert.True(t, cfg.Discord.Enabled)
	assert.Equal(t, "123", cfg.Discord.ClientID)
}

func TestLoadFiles_LastFileWins(t *testing.T) {
	first := writeConfig(t, `theme = "dark"`)
	second := writeConfig(t, `theme = "light"`)

	cfg, err := LoadFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
}

func TestLoadFiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", `backend = "gstreamer"`},
		{"unknown theme", `theme = "blue"`},
		{"zero poll interval", `poll_interval_ms = 0`},
		{"negative timeout", `prepare_timeout_ms = -1`},
		{"zero buffer", `max_buffer_mb = 0`},
		{"discord without id", "[discord]\nenabled = true"},
		{"malformed toml", `backend = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFiles(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
