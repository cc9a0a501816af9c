// Package config loads runtime configuration for the portal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the portal backend API
//	-d string   path of the local SQLite database
//	-l int      refresh lookahead window (seconds)
//	-i int      resume detector interval (seconds)
//	-t int      HTTP request timeout (seconds)
//	-r int      HTTP retry count
//	-lang code  language of user-facing texts (en, nl)
//	-v          verbose (debug) logging
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "60s" or
// integer nanoseconds. Absent keys keep their earlier value:
//
//	{
//	  "api_endpoint_url": "https://portal.example/api",
//	  "database_path": "portal.db",
//	  "refresh_lookahead": "60s",
//	  "resume_check_interval": "5s",
//	  "request_timeout": "10s",
//	  "retry_max": 2,
//	  "session_poll_interval": "1s",
//	  "language": "en",
//	  "verbose": false
//	}
//
// Environment variables are not read.
package config
