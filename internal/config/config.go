// Package config handles the XDG configuration directory, the config.yaml
// settings file and the stored session token.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "boardctl"

	// SettingsFile is the YAML settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored board session token filename.
	TokenFile = "token.json"

	// SnapshotDir holds one local snapshot file per board.
	SnapshotDir = "boards"

	// LogFile receives log output while the interactive editor owns the terminal.
	LogFile = "boardctl.log"

	// OAuthClientFile is the Google OAuth client credentials filename (mirror only).
	OAuthClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename (mirror only).
	GoogleTokenFile = "google_token.json"

	// EnvToken overrides the stored session token.
	EnvToken = "BOARDCTL_TOKEN"

	// EnvURL overrides the configured base URL.
	EnvURL = "BOARDCTL_URL"
)

// Defaults for settings missing from config.yaml.
const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultLocale      = "en"
	DefaultDebounce    = 500 * time.Millisecond
	DefaultTimeout     = 10 * time.Second
	DefaultInitialTask = "New task"
)

// Settings is the content of config.yaml.
type Settings struct {
	BaseURL     string        `yaml:"base_url"`
	BoardID     string        `yaml:"board_id,omitempty"`
	Locale      string        `yaml:"locale,omitempty"`
	Debounce    time.Duration `yaml:"debounce,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	InitialTask string        `yaml:"initial_task,omitempty"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Log is the process logger. Never nil after New.
	Log *zap.Logger
}

// New creates a Config for the default or specified config directory and
// loads config.yaml from it if present.
// If configDir is empty, uses XDG_CONFIG_HOME/boardctl or $HOME/.config/boardctl.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Log: zap.NewNop()}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", SettingsFile, err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c.Settings); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}
	if env := strings.TrimSpace(os.Getenv(EnvURL)); env != "" {
		c.BaseURL = env
	}
	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.InitialTask == "" {
		c.InitialTask = DefaultInitialTask
	}
}

// Save writes the current settings to config.yaml.
func (c *Config) Save() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(&c.Settings)
	if err != nil {
		return fmt.Errorf("encode %s: %w", SettingsFile, err)
	}
	return os.WriteFile(c.SettingsPath(), data, 0600)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SnapshotPath returns the path to the local snapshot of the selected board,
// boards/<id>.json. Each board keeps its own file, so switching boards does
// not drop what is remembered about the others.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Dir, SnapshotDir, url.PathEscape(c.BoardID)+".json")
}

// LogPath returns the path to the editor log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token file.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the Google OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}

// tokenFile is the on-disk form of the session token.
type tokenFile struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Token returns the board session token, or "" when not logged in.
// BOARDCTL_TOKEN takes precedence over token.json.
func (c *Config) Token() (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		return StripBearer(env), nil
	}
	data, err := os.ReadFile(c.TokenPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", TokenFile, err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("invalid %s: %w", TokenFile, err)
	}
	return StripBearer(tf.Token), nil
}

// HasToken checks if a session token is available.
func (c *Config) HasToken() bool {
	tok, err := c.Token()
	return err == nil && tok != ""
}

// SaveToken stores the session token with mode 0600.
func (c *Config) SaveToken(token string) error {
	token = StripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenFile{Token: token, CreatedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// StripBearer removes a leading "Bearer " scheme from a token.
func StripBearer(s string) string {
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
