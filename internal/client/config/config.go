package config

import (
	"time"

	"github.com/eduxperience/eduxperience/internal/filex"
)

// Config holds runtime settings for the EduXperience CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - StorageDSN: SQLite file for local state, or "memory".
//   - StoragePassphrase: when set, local values are encrypted with it.
//   - RequestTimeout: per-request limit of backend calls.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - Admin*: the admin dashboard account (JSON only).
type Config struct {
	ServerURL           string
	StorageDSN          string
	StoragePassphrase   string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.StorageDSN = filex.DefaultDataPath("client.db")
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
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
