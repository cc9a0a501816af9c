package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/yiviportal/internal/flagx"
	"github.com/dmitrijs2005/yiviportal/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields let
// parseJson tell an absent key from a zero value.
type JsonConfig struct {
	APIEndpointURL      *string         `json:"api_endpoint_url"`
	DatabasePath        *string         `json:"database_path"`
	RefreshLookahead    *timex.Duration `json:"refresh_lookahead"`
	ResumeCheckInterval *timex.Duration `json:"resume_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RetryMax            *int            `json:"retry_max"`
	SessionPollInterval *timex.Duration `json:"session_poll_interval"`
	Language            *string         `json:"language"`
	Verbose             *bool           `json:"verbose"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag nothing happens. Read or decode errors panic, like
// flag errors in parseFlags.
func parseJson(cfg *Config, args []string) {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIEndpointURL != nil {
		cfg.APIEndpointURL = *jc.APIEndpointURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RefreshLookahead != nil {
		cfg.RefreshLookahead = jc.RefreshLookahead.Duration
	}
	if jc.ResumeCheckInterval != nil {
		cfg.ResumeCheckInterval = jc.ResumeCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryMax != nil {
		cfg.RetryMax = *jc.RetryMax
	}
	if jc.SessionPollInterval != nil {
		cfg.SessionPollInterval = jc.SessionPollInterval.Duration
	}
	if jc.Language != nil {
		cfg.Language = *jc.Language
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
}
