package config

import (
	"encoding/json"
	"os"

	"github.com/eduxperience/eduxperience/internal/flagx"
	"github.com/eduxperience/eduxperience/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "10s" or as nanoseconds.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	StorageDSN          string         `json:"storage_dsn"`
	StoragePassphrase   string         `json:"storage_passphrase"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`

	AdminUsername     string `json:"admin_username"`
	AdminPassword     string `json:"admin_password"`
	AdminPasswordHash string `json:"admin_password_hash"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c or -config. Without either flag it does nothing. Read and decode
// errors panic, like flag errors do.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.StorageDSN, jc.StorageDSN)
	setString(&cfg.StoragePassphrase, jc.StoragePassphrase)
	setString(&cfg.AdminUsername, jc.AdminUsername)
	setString(&cfg.AdminPassword, jc.AdminPassword)
	setString(&cfg.AdminPasswordHash, jc.AdminPasswordHash)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
