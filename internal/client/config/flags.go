package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Only the
// flags listed in doc.go are looked at; everything else in args is
// dropped by flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-l", "-i", "-t", "-r", "-lang", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIEndpointURL, "a", cfg.APIEndpointURL, "base URL of the portal API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	lookahead := fs.Int("l", int(cfg.RefreshLookahead.Seconds()), "refresh lookahead (in seconds)")
	resume := fs.Int("i", int(cfg.ResumeCheckInterval.Seconds()), "resume check interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.RetryMax, "r", cfg.RetryMax, "HTTP retry count")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "language of user-facing texts (en, nl)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RefreshLookahead = time.Duration(*lookahead) * time.Second
	cfg.ResumeCheckInterval = time.Duration(*resume) * time.Second
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
