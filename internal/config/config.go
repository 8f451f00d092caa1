// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	Version string `toml:"version"`

	// Server configuration
	Server ServerConfig `toml:"server"`

	// Chat / generation configuration
	Chat ChatConfig `toml:"chat"`

	// Document library configuration
	Documents DocumentsConfig `toml:"documents"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains the remote API configuration.
type ServerConfig struct {
	// BaseURL is the base URL of the chat API, e.g. "https://chat.example.com".
	BaseURL string `toml:"base_url"`
	// RequestTimeoutSecs is the timeout for non-streaming requests.
	// Streaming requests are context-controlled and carry no timeout.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// ChatConfig contains generation options sent with each turn.
type ChatConfig struct {
	// Model is the model identifier requested from the server ("" = server default).
	Model string `toml:"model"`
	// Temperature for generation (0 disables the field on the wire).
	Temperature float64 `toml:"temperature"`
}

// DocumentsConfig contains document-library settings.
type DocumentsConfig struct {
	// StatusPollIntervalSecs is how often ingestion status is polled.
	StatusPollIntervalSecs int `toml:"status_poll_interval_secs"`
	// MaxUploadMB is the client-side upload size limit in megabytes.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light".
	Theme string `toml:"theme"`
	// Markdown enables glamour rendering of finished assistant messages.
	Markdown bool `toml:"markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default configuration values.
const (
	DefaultBaseURL            = "http://localhost:8000"
	DefaultRequestTimeoutSecs = 30
	DefaultStatusPollSecs     = 3
	DefaultMaxUploadMB        = 25
	DefaultTheme              = "dark"
)

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:            DefaultBaseURL,
			RequestTimeoutSecs: DefaultRequestTimeoutSecs,
		},
		Chat: ChatConfig{
			Model:       "",
			Temperature: 0,
		},
		Documents: DocumentsConfig{
			StatusPollIntervalSecs: DefaultStatusPollSecs,
			MaxUploadMB:            DefaultMaxUploadMB,
		},
		UI: UIConfig{
			Theme:    DefaultTheme,
			Markdown: true,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// ErrInvalidBaseURL indicates the configured server URL could not be parsed.
var ErrInvalidBaseURL = errors.New("invalid server base URL")

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Dir returns the client configuration directory (~/.agentic-chat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".agentic-chat"), nil
}

// Path returns the path of the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration once per process and caches the result.
// Missing file is not an error: defaults plus environment overrides apply.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		path, err := Path()
		if err != nil {
			loadErr = err
			return
		}
		loaded, loadErr = LoadFrom(path)
	})
	return loaded, loadErr
}

// LoadFrom reads the configuration from an explicit path, applies
// environment overrides and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies AGENTIC_CHAT_* environment variables on top of
// file values. Environment always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTIC_CHAT_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("AGENTIC_CHAT_MODEL"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("AGENTIC_CHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Server.RequestTimeoutSecs = secs
		}
	}
	if v := os.Getenv("AGENTIC_CHAT_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// Validate checks the configuration and clamps out-of-range values.
func (c *Config) Validate() error {
	c.Server.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Server.BaseURL), "/")

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}

	if c.Server.RequestTimeoutSecs <= 0 {
		c.Server.RequestTimeoutSecs = DefaultRequestTimeoutSecs
	}
	if c.Documents.StatusPollIntervalSecs <= 0 {
		c.Documents.StatusPollIntervalSecs = DefaultStatusPollSecs
	}
	if c.Documents.MaxUploadMB <= 0 {
		c.Documents.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = DefaultTheme
	}
	return nil
}

// RequestTimeout returns the non-streaming request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// StatusPollInterval returns the document status polling interval.
func (c *Config) StatusPollInterval() time.Duration {
	return time.Duration(c.Documents.StatusPollIntervalSecs) * time.Second
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path atomically.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path atomically.
func (c *Config) SaveTo(path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
