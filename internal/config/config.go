// Package config loads the controller configuration from a config file with an
// optional .env overlay for credentials. Missing or unreadable configuration
// falls back to documented defaults, including a placeholder API key that
// callers must refuse to run with.
package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

// PlaceholderAPIKey is the credential shipped in the default configuration.
// It is never valid for operation.
const PlaceholderAPIKey = "YOUR_GEMINI_API_KEY"

// ErrPlaceholderAPIKey is returned by Validate when the configuration still
// carries the placeholder credential.
var ErrPlaceholderAPIKey = errors.New("api_key is the placeholder; set a real Gemini API key in the config file or GEMINI_API_KEY")

// Config is the immutable controller configuration, resolved at process start.
type Config struct {
	APIKey    string `mapstructure:"api_key"`
	Provider  string `mapstructure:"provider"`
	ModelName string `mapstructure:"model_name"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	NotepadPath         string `mapstructure:"notepad_path"`
	ThinkingHistoryPath string `mapstructure:"thinking_history_path"`
	ScreenshotPath      string `mapstructure:"screenshot_path"`
	ComparisonDir       string `mapstructure:"comparison_dir"`

	// DecisionCooldown is the minimum spacing between model calls, in seconds.
	DecisionCooldown float64 `mapstructure:"decision_cooldown"`

	ThinkingHistoryMaxChars    int `mapstructure:"thinking_history_max_chars"`
	ThinkingHistoryKeepEntries int `mapstructure:"thinking_history_keep_entries"`
	NotepadMaxChars            int `mapstructure:"notepad_max_chars"`

	Debug bool `mapstructure:"debug"`
}

// Default returns the documented fallback configuration used when no config
// file can be read.
func Default() *Config {
	cfg := &Config{
		APIKey:                     PlaceholderAPIKey,
		Provider:                   "gemini",
		ModelName:                  "gemini-2.0-flash",
		Host:                       "127.0.0.1",
		Port:                       8888,
		NotepadPath:                "notepad.txt",
		ScreenshotPath:             "data/screenshots/screenshot.png",
		ComparisonDir:              "data/comparison",
		DecisionCooldown:           3,
		ThinkingHistoryMaxChars:    10000,
		ThinkingHistoryKeepEntries: 5,
		NotepadMaxChars:            10000,
	}
	return cfg
}

// Load reads the configuration file at path (config.json in the working
// directory when empty), overlays credentials from .env and the environment,
// and normalizes all paths to absolute form. An unreadable file is not an
// error: the documented defaults are returned instead.
func Load(path string) (*Config, error) {
	// Best-effort .env overlay; a missing file is normal.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env overlay")
	}

	v := viper.New()
	if path == "" {
		path = "config.json"
	}
	v.SetConfigFile(path)

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Config file not readable, using defaults", "path", path, "error", err)
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}

	applyDefaults(cfg)

	// Environment credential wins over the file.
	envKey := viper.New()
	envKey.AutomaticEnv()
	if key := envKey.GetString("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	if err := absolutizePaths(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills unset fields with the documented defaults.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	if cfg.ModelName == "" {
		cfg.ModelName = def.ModelName
	}
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.NotepadPath == "" {
		cfg.NotepadPath = def.NotepadPath
	}
	if cfg.ScreenshotPath == "" {
		cfg.ScreenshotPath = def.ScreenshotPath
	}
	if cfg.ComparisonDir == "" {
		cfg.ComparisonDir = def.ComparisonDir
	}
	if cfg.ThinkingHistoryMaxChars == 0 {
		cfg.ThinkingHistoryMaxChars = def.ThinkingHistoryMaxChars
	}
	if cfg.ThinkingHistoryKeepEntries == 0 {
		cfg.ThinkingHistoryKeepEntries = def.ThinkingHistoryKeepEntries
	}
	if cfg.NotepadMaxChars == 0 {
		cfg.NotepadMaxChars = def.NotepadMaxChars
	}
}

// absolutizePaths resolves every configured path to absolute form. The
// thinking history defaults to a file co-located with the notepad.
func absolutizePaths(cfg *Config) error {
	var err error
	if cfg.NotepadPath, err = filepath.Abs(cfg.NotepadPath); err != nil {
		return fmt.Errorf("failed to resolve notepad_path: %w", err)
	}
	if cfg.ScreenshotPath, err = filepath.Abs(cfg.ScreenshotPath); err != nil {
		return fmt.Errorf("failed to resolve screenshot_path: %w", err)
	}
	if cfg.ComparisonDir, err = filepath.Abs(cfg.ComparisonDir); err != nil {
		return fmt.Errorf("failed to resolve comparison_dir: %w", err)
	}
	if cfg.ThinkingHistoryPath == "" {
		cfg.ThinkingHistoryPath = filepath.Join(filepath.Dir(cfg.NotepadPath), "thinking_history.txt")
	}
	if cfg.ThinkingHistoryPath, err = filepath.Abs(cfg.ThinkingHistoryPath); err != nil {
		return fmt.Errorf("failed to resolve thinking_history_path: %w", err)
	}
	return nil
}

// Validate checks the configuration for startup-abort conditions.
func (c *Config) Validate() error {
	if c.APIKey == "" || c.APIKey == PlaceholderAPIKey {
		return ErrPlaceholderAPIKey
	}
	if c.DecisionCooldown < 0 {
		return fmt.Errorf("decision_cooldown must be >= 0, got %v", c.DecisionCooldown)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", c.Port)
	}
	if c.ThinkingHistoryKeepEntries < 1 {
		return fmt.Errorf("thinking_history_keep_entries must be >= 1, got %d", c.ThinkingHistoryKeepEntries)
	}
	return nil
}

// Addr returns the host:port string for the listening socket.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Cooldown returns the decision cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.DecisionCooldown * float64(time.Second))
}
