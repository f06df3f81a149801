package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig identifies the messaging API the client talks to.
type ServerConfig struct {
	// BaseURL is the root of the JSON API, e.g. https://host/messaging/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// MessagingConfig holds the behaviour knobs of the messaging views.
type MessagingConfig struct {
	// InboxPerPage is the inbox page size.
	InboxPerPage int `mapstructure:"inbox_per_page" yaml:"inbox_per_page"`

	// NotificationsPerPage is the notification feed page size.
	NotificationsPerPage int `mapstructure:"notifications_per_page" yaml:"notifications_per_page"`

	// PollIntervalSec is the delay between two fetches of a polled view.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// SearchDebounceMs is the idle time after a keystroke before a
	// recipient search is sent.
	SearchDebounceMs int `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`

	// MinSearchChars is the shortest query that reaches the server.
	MinSearchChars int `mapstructure:"min_search_chars" yaml:"min_search_chars"`

	// IsSuperUser enables sending a message to everyone.
	IsSuperUser bool `mapstructure:"is_super_user" yaml:"is_super_user"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme              string `mapstructure:"theme" yaml:"theme"`
	ShowMessageItemIDs bool   `mapstructure:"show_message_item_ids" yaml:"show_message_item_ids"`
}

// Translations holds the user-facing empty-state strings.
type Translations struct {
	EmptyInbox      string `mapstructure:"empty_inbox" yaml:"empty_inbox"`
	EmptyThread     string `mapstructure:"empty_thread" yaml:"empty_thread"`
	NoNotifications string `mapstructure:"no_notifications" yaml:"no_notifications"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Messaging MessagingConfig `mapstructure:"messaging" yaml:"messaging"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
	Trans     Translations    `mapstructure:"trans" yaml:"trans"`
}

// PollInterval returns the poll delay as a duration.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Messaging.PollIntervalSec) * time.Second
}

// SearchDebounce returns the recipient search idle delay as a duration.
func (c *AppConfig) SearchDebounce() time.Duration {
	return time.Duration(c.Messaging.SearchDebounceMs) * time.Millisecond
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailterm/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailterm", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Messaging: MessagingConfig{
			InboxPerPage:         10,
			NotificationsPerPage: 6,
			PollIntervalSec:      10,
			SearchDebounceMs:     500,
			MinSearchChars:       3,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
		Trans: Translations{
			EmptyInbox:      "There are no messages in your inbox",
			EmptyThread:     "There are no messages in this thread",
			NoNotifications: "You have no notifications",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("messaging.inbox_per_page", d.Messaging.InboxPerPage)
	v.SetDefault("messaging.notifications_per_page", d.Messaging.NotificationsPerPage)
	v.SetDefault("messaging.poll_interval_sec", d.Messaging.PollIntervalSec)
	v.SetDefault("messaging.search_debounce_ms", d.Messaging.SearchDebounceMs)
	v.SetDefault("messaging.min_search_chars", d.Messaging.MinSearchChars)
	v.SetDefault("messaging.is_super_user", d.Messaging.IsSuperUser)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.show_message_item_ids", d.Display.ShowMessageItemIDs)
	v.SetDefault("trans.empty_inbox", d.Trans.EmptyInbox)
	v.SetDefault("trans.empty_thread", d.Trans.EmptyThread)
	v.SetDefault("trans.no_notifications", d.Trans.NoNotifications)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by MAILTERM_* environment variables, e.g.
// MAILTERM_SERVER_BASE_URL. A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("mailterm")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()

	return cfg, nil
}

// normalize replaces unusable values with their defaults.
func (c *AppConfig) normalize() {
	d := DefaultAppConfig()
	if c.Messaging.InboxPerPage <= 0 {
		c.Messaging.InboxPerPage = d.Messaging.InboxPerPage
	}
	if c.Messaging.NotificationsPerPage <= 0 {
		c.Messaging.NotificationsPerPage = d.Messaging.NotificationsPerPage
	}
	if c.Messaging.PollIntervalSec <= 0 {
		c.Messaging.PollIntervalSec = d.Messaging.PollIntervalSec
	}
	if c.Messaging.SearchDebounceMs <= 0 {
		c.Messaging.SearchDebounceMs = d.Messaging.SearchDebounceMs
	}
	if c.Messaging.MinSearchChars < 1 {
		c.Messaging.MinSearchChars = 1
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("messaging", cfg.Messaging)
	v.Set("display", cfg.Display)
	v.Set("trans", cfg.Trans)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
