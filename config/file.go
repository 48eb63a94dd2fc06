package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pevans/uawatch/scraper"
	"gopkg.in/yaml.v3"
)

// Listing modes.
const (
	ListingHTML        = "html"
	ListingSyndication = "syndication"
)

// DefaultSiteURL is the front page that is polled.
const DefaultSiteURL = "https://liveuamap.com/"

// SiteConfig describes the news site.
type SiteConfig struct {
	URL            string            `yaml:"url"`
	UserAgent      string            `yaml:"user_agent"`
	Listing        string            `yaml:"listing"` // "html" or "syndication"
	SyndicationURL string            `yaml:"syndication_url"`
	Selectors      scraper.Selectors `yaml:"selectors"`
}

// PollConfig holds the loop timings as Go duration strings.
type PollConfig struct {
	MinDelay        string `yaml:"min_delay"`
	MaxDelay        string `yaml:"max_delay"`
	EmptyRetry      string `yaml:"empty_retry"`
	RequestInterval string `yaml:"request_interval"`
	Timeout         string `yaml:"timeout"`
}

// StorageConfig represents storage configuration from config file.
type StorageConfig struct {
	State struct {
		Type string `yaml:"type"`
		DSN  string `yaml:"dsn"`
	} `yaml:"state"`
}

// FileConfig represents the structure of ~/.uawatch/config.yaml.
type FileConfig struct {
	Site    SiteConfig    `yaml:"site"`
	Poll    PollConfig    `yaml:"poll"`
	Storage StorageConfig `yaml:"storage"`
	Log     struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// ConfigFilePath returns ~/.uawatch/config.yaml.
func ConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".uawatch", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ~/.uawatch/config.yaml. Returns nil
// if the file doesn't exist (not an error). Returns error if the file exists
// but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFileFrom(configPath)
}

// LoadConfigFileFrom is LoadConfigFile for an explicit path.
func LoadConfigFileFrom(configPath string) (*FileConfig, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Settings are the resolved runtime settings.
type Settings struct {
	SiteURL         string
	UserAgent       string
	Listing         string
	SyndicationURL  string
	Selectors       scraper.Selectors
	MinDelay        time.Duration
	MaxDelay        time.Duration
	EmptyRetry      time.Duration
	RequestInterval time.Duration
	Timeout         time.Duration
	StateType       string
	StateDSN        string // empty means the backend's default location
	LogLevel        string
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		SiteURL:         DefaultSiteURL,
		Listing:         ListingHTML,
		Selectors:       scraper.DefaultSelectors(),
		MinDelay:        45 * time.Second,
		MaxDelay:        75 * time.Second,
		EmptyRetry:      5 * time.Second,
		RequestInterval: time.Second,
		Timeout:         30 * time.Second,
		StateType:       StateFile,
		LogLevel:        "info",
	}
}

// Apply overlays the non-empty fields of cfg onto s. A nil cfg leaves s
// unchanged.
func (s Settings) Apply(cfg *FileConfig) (Settings, error) {
	if cfg == nil {
		return s, nil
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&s.SiteURL, cfg.Site.URL)
	setString(&s.UserAgent, cfg.Site.UserAgent)
	setString(&s.Listing, cfg.Site.Listing)
	setString(&s.SyndicationURL, cfg.Site.SyndicationURL)
	setString(&s.StateType, cfg.Storage.State.Type)
	setString(&s.StateDSN, cfg.Storage.State.DSN)
	setString(&s.LogLevel, cfg.Log.Level)
	s.Selectors = cfg.Site.Selectors.Merge(s.Selectors)

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"poll.min_delay", cfg.Poll.MinDelay, &s.MinDelay},
		{"poll.max_delay", cfg.Poll.MaxDelay, &s.MaxDelay},
		{"poll.empty_retry", cfg.Poll.EmptyRetry, &s.EmptyRetry},
		{"poll.request_interval", cfg.Poll.RequestInterval, &s.RequestInterval},
		{"poll.timeout", cfg.Poll.Timeout, &s.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return s, fmt.Errorf("invalid %s: must be a valid duration (e.g., 45s, 1m)", d.name)
		}
		*d.dst = v
	}

	return s, nil
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	if s.MinDelay <= 0 || s.MaxDelay < s.MinDelay {
		return fmt.Errorf("invalid poll delays: need 0 < min_delay <= max_delay (got %s, %s)", s.MinDelay, s.MaxDelay)
	}
	if s.EmptyRetry <= 0 {
		return fmt.Errorf("invalid empty_retry: must be positive")
	}
	if s.RequestInterval < 0 || s.Timeout < 0 {
		return fmt.Errorf("request_interval and timeout must not be negative")
	}

	switch s.StateType {
	case StateFile, StateSQLite:
	case StatePostgres:
		if s.StateDSN == "" {
			return fmt.Errorf("%w for the %s backend", ErrMissingDSN, s.StateType)
		}
	default:
		return fmt.Errorf("invalid state type %q: must be %q, %q or %q", s.StateType, StateFile, StateSQLite, StatePostgres)
	}

	switch s.Listing {
	case ListingHTML:
		if s.SiteURL == "" {
			return fmt.Errorf("site url is required")
		}
	case ListingSyndication:
		if s.SyndicationURL == "" {
			return fmt.Errorf("syndication_url is required when listing is %q", ListingSyndication)
		}
	default:
		return fmt.Errorf("invalid listing mode %q: must be %q or %q", s.Listing, ListingHTML, ListingSyndication)
	}

	return nil
}
