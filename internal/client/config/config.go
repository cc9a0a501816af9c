package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the portal CLI.
//
// Fields:
//   - APIEndpointURL: base URL of the portal backend REST API.
//   - DatabasePath: SQLite file holding the persisted token and cookies.
//   - RefreshLookahead: tokens expiring within this window are refreshed
//     rather than trusted.
//   - ResumeCheckInterval: tick of the suspend/resume detector.
//   - RequestTimeout: per-request HTTP timeout.
//   - RetryMax: retries for failed idempotent HTTP calls.
//   - SessionPollInterval: how often the login ceremony polls for status.
//   - Language: locale of user-facing texts, "en" or "nl".
//   - Verbose: enables debug logging.
type Config struct {
	APIEndpointURL      string
	DatabasePath        string
	RefreshLookahead    time.Duration
	ResumeCheckInterval time.Duration
	RequestTimeout      time.Duration
	RetryMax            int
	SessionPollInterval time.Duration
	Language            string
	Verbose             bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIEndpointURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "portal.db"
	c.RefreshLookahead = 60 * time.Second
	c.ResumeCheckInterval = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.RetryMax = 2
	c.SessionPollInterval = time.Second
	c.Language = "en"
	c.Verbose = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
