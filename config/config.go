// Package config provides configuration management for Rig Panel.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dysperse/rigpanel/common"
	"gopkg.in/yaml.v3"
)

// Lock event sources understood by the power bridge.
const (
	SourceScreenSaver = "screensaver"
	SourceLogind      = "logind"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	Server ServerConfig `yaml:"server"`
	// PollInterval is how often the server status is probed.
	PollInterval time.Duration `yaml:"poll_interval"`
	// ColorDebounce is how long the color picker waits after the last change.
	ColorDebounce time.Duration `yaml:"color_debounce"`
	// LockOnLeave controls what happens when the screen locks or unlocks.
	LockOnLeave LockOnLeaveConfig `yaml:"lock_on_leave"`
	UI          UIConfig          `yaml:"ui"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	path string
}

// ServerConfig describes how to reach the rig server.
type ServerConfig struct {
	// URL is the base address, e.g. http://192.168.1.44:5000. Required.
	URL string `yaml:"url"`
	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout"`
	// UseToken sends the bearer token stored in the keyring.
	UseToken bool `yaml:"use_token"`
}

// LockOnLeaveConfig mirrors the "Lock on leave" panel.
type LockOnLeaveConfig struct {
	// Enabled turns the power-event bridge on or off.
	Enabled bool `yaml:"enabled"`
	// NotifyServer posts LOCK/UNLOCK to the server.
	NotifyServer bool `yaml:"notify_server"`
	// MuteAudio mutes on lock and unmutes on unlock.
	MuteAudio bool `yaml:"mute_audio"`
	// Source selects where lock events come from: "screensaver" or "logind".
	Source string `yaml:"source"`
}

// UIConfig holds front-end preferences.
type UIConfig struct {
	// StartHidden starts the GUI in the tray without showing the window.
	StartHidden bool `yaml:"start_hidden"`
	// ShowNotifications shows desktop notifications when the server goes
	// online or offline.
	ShowNotifications bool `yaml:"show_notifications"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`
}

// DefaultConfig returns the default configuration.
// The server URL is intentionally empty: it has no sensible default.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: common.RequestTimeout,
		},
		PollInterval:  common.StatusPollInterval,
		ColorDebounce: common.ColorDebounce,
		LockOnLeave: LockOnLeaveConfig{
			Enabled:      true,
			NotifyServer: true,
			MuteAudio:    true,
			Source:       SourceScreenSaver,
		},
		UI: UIConfig{
			ShowNotifications: true,
			Theme:             common.ThemeAuto,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns ~/.config/rigpanel/config.yaml.
func DefaultPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}

// Load loads the configuration from path, or from DefaultPath when path is
// empty. If the file doesn't exist, one is created with default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening configuration: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	cfg := DefaultConfig()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}
	cfg.path = path

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration: %v", common.ErrConfigLoad, err)
	}

	return cfg, nil
}

// validate repairs out-of-range values and rejects ones that cannot be repaired.
func (c *Config) validate() error {
	defaults := DefaultConfig()

	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.ColorDebounce <= 0 {
		c.ColorDebounce = defaults.ColorDebounce
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = defaults.Server.Timeout
	}

	switch c.UI.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	default:
		c.UI.Theme = common.ThemeAuto
	}

	switch c.LockOnLeave.Source {
	case SourceScreenSaver, SourceLogind:
	default:
		c.LockOnLeave.Source = SourceScreenSaver
	}

	if c.Server.URL != "" {
		if err := checkServerURL(c.Server.URL); err != nil {
			return err
		}
	}
	return nil
}

// SetServerURL validates and stores a new server base URL.
func (c *Config) SetServerURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return common.ErrMissingServerURL
	}
	if err := checkServerURL(raw); err != nil {
		return err
	}
	c.Server.URL = strings.TrimRight(raw, "/")
	return nil
}

// RequireServer reports ErrMissingServerURL when no server is configured.
func (c *Config) RequireServer() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return common.ErrMissingServerURL
	}
	return nil
}

func checkServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("server url %q: missing host", raw)
	}
	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to the file it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
		}
		path = p
		c.path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: error saving configuration: %v", common.ErrConfigSave, err)
	}

	return nil
}
