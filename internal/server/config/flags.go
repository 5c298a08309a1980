package config

import (
	"flag"
	"os"
	"time"

	"github.com/eduxperience/eduxperience/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-v int      verification link validity, minutes
//	-r string   Redis address (empty keeps verification tokens in memory)
//	-p string   public base URL used in verification links
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and other
// components' flags do not collide. Duration flags are minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-v", "-r", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	verificationTokenValidityDuration := fs.Int("v", int(config.VerificationTokenValidityDuration.Minutes()), "verification_token_validity_duration (in minutes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.PublicBaseURL, "p", config.PublicBaseURL, "public base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.VerificationTokenValidityDuration = time.Duration(*verificationTokenValidityDuration) * time.Minute
}
