package config

import (
	"encoding/json"
	"os"

	"github.com/eduxperience/eduxperience/internal/flagx"
	"github.com/eduxperience/eduxperience/internal/timex"
)

// JsonConfig is the JSON shape of Config. Durations use timex.Duration so
// they accept both "15m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP                  string         `json:"endpoint_addr_http"`
	DatabaseDSN                       string         `json:"database_dsn"`
	SecretKey                         string         `json:"secret_key"`
	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration"`
	VerificationTokenValidityDuration timex.Duration `json:"verification_token_validity_duration"`
	RedisAddr                         string         `json:"redis_addr"`
	PublicBaseURL                     string         `json:"public_base_url"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c or -config. Without either flag nothing is loaded. Read and decode
// errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.PublicBaseURL, c.PublicBaseURL)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.VerificationTokenValidityDuration.Duration > 0 {
		config.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
