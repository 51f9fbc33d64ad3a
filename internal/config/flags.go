package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// See the package documentation for the list. TTL flags are given in
// minutes.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-D", "-k", "-r", "-t", "-l", "-L"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreDriver, "b", cfg.StoreDriver, "key-value store backend (sqlite, postgres, memory, s3)")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "store DSN")
	fs.StringVar(&cfg.DataDir, "D", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "secret key for verification links")

	resetTTL := fs.Int("r", int(cfg.ResetTokenTTL.Minutes()), "reset link validity (in minutes)")
	verificationTTL := fs.Int("t", int(cfg.VerificationTokenTTL.Minutes()), "verification link validity (in minutes)")

	fs.BoolVar(&cfg.SimulateLatency, "l", cfg.SimulateLatency, "simulate network latency")
	fs.StringVar(&cfg.LogLevel, "L", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ResetTokenTTL = time.Duration(*resetTTL) * time.Minute
	cfg.VerificationTokenTTL = time.Duration(*verificationTTL) * time.Minute
}
