package config

import (
	"fmt"

	pflag "github.com/spf13/pflag"
)

// BindFlags registers the configuration flags on fs, writing into cfg.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DBLogFile, FlagDBLogFile, cfg.DBLogFile, "database file used when lightningd passes none")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.DurationVar(&cfg.BusyTimeout, FlagBusyTimeout, cfg.BusyTimeout, "SQLite busy timeout")
	fs.StringVar(&cfg.JournalMode, FlagJournalMode, cfg.JournalMode, "SQLite journal mode")
}

// Changed returns the set of flags explicitly set on fs.
func Changed(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// Resolve applies the config file at path (if it exists) beneath the flags
// already parsed into cfg, then validates the result. An explicitly given
// path that does not exist is an error; the default path is optional.
func Resolve(cfg *Config, fs *pflag.FlagSet, path string, explicit bool) error {
	if path != "" {
		if FileExists(path) {
			fc, err := LoadFileConfig(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := ApplyFileConfig(cfg, fc, Changed(fs)); err != nil {
				return err
			}
		} else if explicit {
			return fmt.Errorf("config file %s not found", path)
		}
	}
	return cfg.Validate()
}
