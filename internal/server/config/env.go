package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvEndpointAddrHTTP     = "EDUX_HTTP_ADDR"
	EnvDatabaseDSN          = "EDUX_DATABASE_DSN"
	EnvSecretKey            = "EDUX_SECRET_KEY"
	EnvAccessTokenTTL       = "EDUX_ACCESS_TOKEN_TTL"
	EnvVerificationTokenTTL = "EDUX_VERIFICATION_TOKEN_TTL"
	EnvRedisAddr            = "EDUX_REDIS_ADDR"
	EnvPublicBaseURL        = "EDUX_PUBLIC_BASE_URL"
	defaultEnvFile          = ".env"
)

// envFile is the dotenv file loaded before the environment is read.
var envFile = defaultEnvFile

// parseEnv loads envFile into the process environment (variables already set
// win) and overlays Config with the EDUX_* variables that are set. A missing
// file is not an error; a malformed file or duration panics.
func parseEnv(config *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	lookupString(EnvEndpointAddrHTTP, &config.EndpointAddrHTTP)
	lookupString(EnvDatabaseDSN, &config.DatabaseDSN)
	lookupString(EnvSecretKey, &config.SecretKey)
	lookupString(EnvRedisAddr, &config.RedisAddr)
	lookupString(EnvPublicBaseURL, &config.PublicBaseURL)
	lookupDuration(EnvAccessTokenTTL, &config.AccessTokenValidityDuration)
	lookupDuration(EnvVerificationTokenTTL, &config.VerificationTokenValidityDuration)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
