// Package config handles configuration for the client component.
package config

import "time"

// Config holds runtime settings for the finsync CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST endpoint.
//   - DatabaseFile: path of the local sqlite database.
//   - RequestTimeout: per-request timeout for server calls.
type Config struct {
	ServerBaseURL  string
	DatabaseFile   string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabaseFile = "finsync.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
