package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvServerURL = "MEETING_CLIENT_URL"
	EnvStateDB   = "MEETING_CLIENT_STATE_DB"

	DefaultServerURL = "http://127.0.0.1:8000"
	configDirName    = ".meeting-client"
)

// Config is read from ~/.meeting-client/config.yaml. Every field is optional.
//
// Example:
//
//	server:
//	  url: http://127.0.0.1:8000
//	  request_timeout: 0s
//	poll:
//	  status_interval: 1s
//	  history_interval: 5s
//	search:
//	  debounce: 300ms
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Poll          PollConfig          `yaml:"poll" json:"poll"`
	Search        SearchConfig        `yaml:"search" json:"search"`
	Notifications NotificationsConfig `yaml:"notifications" json:"notifications"`
	Upload        UploadConfig        `yaml:"upload" json:"upload"`
	State         StateConfig         `yaml:"state" json:"state"`
}

type ServerConfig struct {
	URL string `yaml:"url" json:"url"`
	// RequestTimeout of zero leaves requests unbounded
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

type PollConfig struct {
	StatusInterval  time.Duration `yaml:"status_interval" json:"status_interval"`
	HistoryInterval time.Duration `yaml:"history_interval" json:"history_interval"`
}

type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

type NotificationsConfig struct {
	ToastDuration   time.Duration `yaml:"toast_duration" json:"toast_duration"`
	CaptionOverride time.Duration `yaml:"caption_override" json:"caption_override"`
}

type UploadConfig struct {
	RefreshDelay time.Duration `yaml:"refresh_delay" json:"refresh_delay"`
}

type StateConfig struct {
	DBPath string `yaml:"db_path" json:"db_path"`
}

// DefaultConfigDir returns ~/.meeting-client
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// DefaultConfigPath returns ~/.meeting-client/config.yaml
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	dbPath := "state.db"
	if dir, err := DefaultConfigDir(); err == nil {
		dbPath = filepath.Join(dir, "state.db")
	}

	return &Config{
		Server: ServerConfig{URL: DefaultServerURL},
		Poll: PollConfig{
			StatusInterval:  DefaultStatusInterval,
			HistoryInterval: DefaultHistoryInterval,
		},
		Search: SearchConfig{Debounce: DefaultSearchDebounce},
		Notifications: NotificationsConfig{
			ToastDuration:   DefaultToastDuration,
			CaptionOverride: DefaultCaptionOverride,
		},
		Upload: UploadConfig{RefreshDelay: DefaultUploadRefreshDelay},
		State:  StateConfig{DBPath: dbPath},
	}
}

// LoadConfig reads the config file at path (the default path when empty),
// then applies .env and environment overrides. A missing file yields the
// defaults; a file that does not parse is an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		LogDebug("No config file at %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	loadDotEnv()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadDotEnv loads ./.env when present. Existing variables are not overwritten.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		LogWarn("Failed to load .env: %v", err)
	}
}

// ApplyEnv overrides fields from the environment
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.Server.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStateDB)); v != "" {
		c.State.DBPath = v
	}
}

// Validate checks the server URL and that every interval is positive
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url %q: scheme must be http or https", c.Server.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("server.url %q: missing host", c.Server.URL)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}

	positive := []struct {
		name string
		d    time.Duration
	}{
		{"poll.status_interval", c.Poll.StatusInterval},
		{"poll.history_interval", c.Poll.HistoryInterval},
		{"search.debounce", c.Search.Debounce},
		{"notifications.toast_duration", c.Notifications.ToastDuration},
		{"notifications.caption_override", c.Notifications.CaptionOverride},
		{"upload.refresh_delay", c.Upload.RefreshDelay},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", p.name, p.d)
		}
	}
	return nil
}

// EnsureDefaultConfig writes the default config to path unless a file is
// already there. It reports whether a file was created.
func EnsureDefaultConfig(path string) (bool, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return false, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return false, fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return true, nil
}
