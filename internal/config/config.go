// Package config holds dblog's runtime configuration: defaults, an optional
// TOML file and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"time"

	"github.com/roach88/dblog/internal/logging"
	"github.com/roach88/dblog/internal/store"
)

// Config is the resolved configuration.
type Config struct {
	// DBLogFile is used when lightningd's init carries no dblog-file option.
	DBLogFile   string
	LogLevel    string
	BusyTimeout time.Duration
	JournalMode string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	opts := store.DefaultOptions()
	return Config{
		LogLevel:    "info",
		BusyTimeout: opts.BusyTimeout,
		JournalMode: opts.JournalMode,
	}
}

// StoreOptions converts the store-related settings.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		BusyTimeout: c.BusyTimeout,
		JournalMode: c.JournalMode,
	}
}

// Validate checks the configuration. DBLogFile may be empty; init then
// has to provide it.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.StoreOptions().Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
