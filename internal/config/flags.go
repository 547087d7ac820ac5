package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/subtrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN for the remote store
//	-f string   path to the local cache database file
//	-p string   base URL of the identity provider
//	-t int      provider request timeout in seconds
//	-w int      renewal window length in days
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with subcommand arguments.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-f", "-p", "-t", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN of the remote store")
	fs.StringVar(&cfg.CachePath, "f", cfg.CachePath, "path to the local cache database")
	fs.StringVar(&cfg.ProviderBaseURL, "p", cfg.ProviderBaseURL, "identity provider base URL")
	providerTimeout := fs.Int("t", int(cfg.ProviderTimeout.Seconds()), "provider timeout (in seconds)")
	fs.IntVar(&cfg.RenewalWindowDays, "w", cfg.RenewalWindowDays, "renewal window (in days)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ProviderTimeout = time.Duration(*providerTimeout) * time.Second
}
