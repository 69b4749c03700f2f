package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	perrors "github.com/zhubert/parley/internal/errors"
)

const (
	// DefaultServerURL is the assistant backend used when nothing is configured.
	DefaultServerURL = "http://localhost:8000"

	defaultRevealIntervalMs = 10
	defaultRevealChunkSize  = 3
	defaultScrollThreshold  = 3

	envConfigDir = "PARLEY_CONFIG_DIR"
	envServerURL = "PARLEY_SERVER_URL"
	envToken     = "PARLEY_TOKEN"
)

// Config holds the application configuration
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token,omitempty"` // Bearer token from the identity backend
	UserEmail string `json:"user_email,omitempty"`

	Theme                string `json:"theme,omitempty"`
	RevealIntervalMs     int    `json:"reveal_interval_ms,omitempty"`     // Delay between reveal ticks
	RevealChunkSize      int    `json:"reveal_chunk_size,omitempty"`      // Fallback chunk size in graphemes
	ScrollThresholdLines int    `json:"scroll_threshold_lines,omitempty"` // Distance from bottom still counted as "at bottom"
	NotificationsEnabled bool   `json:"notifications_enabled,omitempty"`  // Desktop notifications on reply/payment

	LastConversationID string `json:"last_conversation_id,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if it doesn't exist.
// Environment overrides are applied after the file is read.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, perrors.ConfigLoadFailed("~/.parley", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, perrors.ConfigLoadFailed(path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, perrors.ConfigLoadFailed(path, err)
		}
	}

	cfg.applyEnv()
	cfg.ensureInitialized()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(envToken); v != "" {
		c.Token = v
	}
}

// ensureInitialized fills zero values with defaults. Only called from Load
// before the Config is shared.
func (c *Config) ensureInitialized() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.RevealIntervalMs <= 0 {
		c.RevealIntervalMs = defaultRevealIntervalMs
	}
	if c.RevealChunkSize <= 0 {
		c.RevealChunkSize = defaultRevealChunkSize
	}
	if c.ScrollThresholdLines <= 0 {
		c.ScrollThresholdLines = defaultScrollThreshold
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return perrors.ConfigInvalid("server_url must be an absolute http(s) URL: " + c.ServerURL)
	}
	if c.RevealIntervalMs > 1000 {
		return perrors.ConfigInvalid("reveal_interval_ms must be at most 1000")
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	// 0600: the file holds a bearer token
	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// Path returns the file the config is persisted to
func (c *Config) Path() string {
	return c.filePath
}

// GetServerURL returns the backend base URL
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL sets the backend base URL
func (c *Config) SetServerURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = u
}

// GetToken returns the stored bearer token
func (c *Config) GetToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Token
}

// SetCredentials stores the token and the email it was issued for
func (c *Config) SetCredentials(token, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = token
	c.UserEmail = email
}

// ClearCredentials forgets the stored token
func (c *Config) ClearCredentials() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = ""
	c.UserEmail = ""
	c.LastConversationID = ""
}

// GetUserEmail returns the email of the signed-in account
func (c *Config) GetUserEmail() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.UserEmail
}

// IsLoggedIn returns whether a token is available
func (c *Config) IsLoggedIn() bool {
	return c.GetToken() != ""
}

// GetTheme returns the configured UI theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// RevealInterval returns the delay between reveal ticks
func (c *Config) RevealInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.RevealIntervalMs) * time.Millisecond
}

// GetRevealChunkSize returns the fallback chunk size for reveals
func (c *Config) GetRevealChunkSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RevealChunkSize
}

// GetScrollThreshold returns the at-bottom distance in lines
func (c *Config) GetScrollThreshold() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ScrollThresholdLines
}

// GetNotificationsEnabled returns whether desktop notifications are on
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled toggles desktop notifications
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetLastConversationID returns the conversation that was open on exit
func (c *Config) GetLastConversationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastConversationID
}

// SetLastConversationID records the active conversation
func (c *Config) SetLastConversationID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastConversationID = id
}
