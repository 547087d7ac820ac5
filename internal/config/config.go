// Package config handles runtime configuration for the subscription tracker,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the tracker.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN (pgx) for the authoritative remote store.
//     Empty disables the remote path entirely (cache-only operation).
//   - CachePath: path to the local SQLite cache database.
//   - ProviderBaseURL: base URL of the federated identity provider's JSON API.
//   - ProviderTimeout: per-request timeout for provider calls.
//   - RenewalWindowDays: window length for the upcoming-renewals summary.
type Config struct {
	DatabaseDSN       string
	CachePath         string
	ProviderBaseURL   string
	ProviderTimeout   time.Duration
	RenewalWindowDays int
}

// LoadDefaults populates c with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.CachePath = "subtrack.db"
	c.ProviderBaseURL = ""
	c.ProviderTimeout = 5 * time.Second
	c.RenewalWindowDays = 7
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
