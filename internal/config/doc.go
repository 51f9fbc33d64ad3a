// Package config loads runtime configuration for the todoauth client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables with the TODOAUTH_ prefix (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string   key-value store backend: sqlite, postgres, memory, s3
//	-d string   store DSN (sqlite file name or postgres URL)
//	-D string   data directory for file based stores
//	-k string   secret key used to sign email verification links
//	-r int      password reset link validity (minutes)
//	-t int      email verification link validity (minutes)
//	-l bool     simulate network latency in the auth service
//	-L string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "1h" or
// integer nanoseconds:
//
//	{
//	  "store_driver": "sqlite",
//	  "store_dsn": "todoauth.db",
//	  "reset_token_ttl": "1h",
//	  "simulate_latency": false
//	}
package config
