// Package config loads service configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	// Addr is the HTTP listen address.
	Addr string
	// DatabaseURL selects the Postgres store; empty means in-memory.
	DatabaseURL string
	// ScanInterval is the expiration scanner cycle period.
	ScanInterval time.Duration
	// StrictValidation enables the store-write validations (VIN uniqueness,
	// end date ordering, non-negative claim amounts) that the legacy data
	// model left unenforced. Off by default to preserve observed behavior.
	StrictValidation bool
	// LogFormat is "json" or "text".
	LogFormat string
	// SeedDemoData populates the demo fleet when the store is empty.
	SeedDemoData bool
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MOTORCOVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	scanInterval := time.Hour
	if raw := os.Getenv("MOTORCOVER_SCAN_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			scanInterval = d
		}
	}

	logFormat := os.Getenv("MOTORCOVER_LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return Server{
		Addr:             addr,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ScanInterval:     scanInterval,
		StrictValidation: os.Getenv("MOTORCOVER_STRICT_VALIDATION") == "true",
		LogFormat:        logFormat,
		SeedDemoData:     os.Getenv("MOTORCOVER_SKIP_SEED") != "true",
	}
}
