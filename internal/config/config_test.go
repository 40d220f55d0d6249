package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, PlaceholderAPIKey, cfg.APIKey)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8888, cfg.Port)
	assert.Equal(t, 3.0, cfg.DecisionCooldown)
	assert.Equal(t, 10000, cfg.ThinkingHistoryMaxChars)
	assert.Equal(t, 5, cfg.ThinkingHistoryKeepEntries)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"api_key": "test-key-123456",
		"model_name": "gemini-2.5-pro",
		"host": "0.0.0.0",
		"port": 9999,
		"notepad_path": "notes/notepad.txt",
		"decision_cooldown": 1.5,
		"debug": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key-123456", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.ModelName)
	assert.Equal(t, "0.0.0.0:9999", cfg.Addr())
	assert.Equal(t, 1.5, cfg.DecisionCooldown)
	assert.True(t, cfg.Debug)

	// Unset fields still pick up defaults.
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 5, cfg.ThinkingHistoryKeepEntries)
}

func TestLoadAbsolutizesPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.NotepadPath), "notepad path: %s", cfg.NotepadPath)
	assert.True(t, filepath.IsAbs(cfg.ScreenshotPath))
	assert.True(t, filepath.IsAbs(cfg.ComparisonDir))
	assert.True(t, filepath.IsAbs(cfg.ThinkingHistoryPath))

	// Thinking history co-located with the notepad by default.
	assert.Equal(t, filepath.Dir(cfg.NotepadPath), filepath.Dir(cfg.ThinkingHistoryPath))
}

func TestEnvironmentKeyOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key": "file-key"}`), 0644))

	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) { c.APIKey = "real-key" }, false},
		{"placeholder key", func(_ *Config) {}, true},
		{"empty key", func(c *Config) { c.APIKey = "" }, true},
		{"negative cooldown", func(c *Config) { c.APIKey = "k"; c.DecisionCooldown = -1 }, true},
		{"bad port", func(c *Config) { c.APIKey = "k"; c.Port = 0 }, true},
		{"zero keep entries", func(c *Config) { c.APIKey = "k"; c.ThinkingHistoryKeepEntries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePlaceholderSentinel(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrPlaceholderAPIKey)
}

func TestCooldownDuration(t *testing.T) {
	cfg := Default()
	cfg.DecisionCooldown = 0.5
	assert.Equal(t, int64(500), cfg.Cooldown().Milliseconds())
}
