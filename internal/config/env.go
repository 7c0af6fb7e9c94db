// Package config reads ALARM_* environment defaults for the daemon's flags.
// Precedence is flag > environment > built-in default; the flag layer lives in
// cmd, this package only resolves the environment step and logs the source.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sweeney/alarm-panel/internal/log"
)

// String reads a string environment variable or returns the default.
func String(key, def string) string {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		logger.Debug().Str("key", key).Str("value", v).Str("source", "environment").Msg("using environment variable")
		return v
	}
	logger.Debug().Str("key", key).Str("default", def).Str("source", "default").Msg("using default value")
	return def
}

// Int reads an integer environment variable or returns the default.
// Invalid values fall back to the default with a warning.
func Int(key string, def int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Int("default", def).Str("source", "default").Msg("using default value")
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid integer in environment variable, using default")
		return def
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// Duration reads a Go duration ("50ms", "30s") environment variable or
// returns the default. Invalid values fall back with a warning.
func Duration(key string, def time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Dur("default", def).Str("source", "default").Msg("using default value")
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("invalid duration in environment variable, using default")
		return def
	}
	logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// ValidCode reports whether s is usable as the panel security code:
// exactly four decimal digits.
func ValidCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
