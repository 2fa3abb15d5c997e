package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML-friendly types.
type FileConfig struct {
	DBLogFile     string `toml:"dblog_file"`
	LogLevel      string `toml:"log_level"`
	BusyTimeoutMS *int   `toml:"busy_timeout_ms"`
	JournalMode   string `toml:"journal_mode"`
}

// LoadFileConfig reads and parses a TOML config file. Unknown keys are errors.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.dblog/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".dblog", "config.toml")
	}
	return ""
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Flag names that file values yield to when set on the command line.
const (
	FlagDBLogFile   = "dblog-file"
	FlagLogLevel    = "log-level"
	FlagBusyTimeout = "busy-timeout"
	FlagJournalMode = "journal-mode"
)

// ApplyFileConfig copies file values into cfg, skipping settings whose flag
// was explicitly changed and values left empty in the file.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	if fc.DBLogFile != "" && !changed[FlagDBLogFile] {
		cfg.DBLogFile = fc.DBLogFile
	}
	if fc.LogLevel != "" && !changed[FlagLogLevel] {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.JournalMode != "" && !changed[FlagJournalMode] {
		cfg.JournalMode = fc.JournalMode
	}
	if fc.BusyTimeoutMS != nil && !changed[FlagBusyTimeout] {
		if *fc.BusyTimeoutMS < 0 {
			return fmt.Errorf("busy_timeout_ms must not be negative, got %d", *fc.BusyTimeoutMS)
		}
		cfg.BusyTimeout = time.Duration(*fc.BusyTimeoutMS) * time.Millisecond
	}
	return nil
}
