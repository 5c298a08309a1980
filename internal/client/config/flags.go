package config

import (
	"flag"
	"os"
	"time"

	"github.com/eduxperience/eduxperience/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server
//	-d string   local storage file, or "memory"
//	-k string   local storage passphrase (enables encryption)
//	-t int      backend request timeout (in seconds)
//	-i int      online check interval (in seconds)
//
// Only these flags are read from os.Args; see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-t", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend server base URL")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "local storage file or \"memory\"")
	fs.StringVar(&cfg.StoragePassphrase, "k", cfg.StoragePassphrase, "local storage passphrase")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "backend request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
