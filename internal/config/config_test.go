package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	pflag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "", cfg.DBLogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout)
	assert.Equal(t, "WAL", cfg.JournalMode)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "shouty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.JournalMode = "sideways"
	assert.ErrorContains(t, cfg.Validate(), "store")
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
dblog_file = "/var/lib/dblog.sqlite3"
log_level = "debug"
busy_timeout_ms = 250
journal_mode = "DELETE"
`)
	fc, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/dblog.sqlite3", fc.DBLogFile)
	assert.Equal(t, "debug", fc.LogLevel)
	require.NotNil(t, fc.BusyTimeoutMS)
	assert.Equal(t, 250, *fc.BusyTimeoutMS)
	assert.Equal(t, "DELETE", fc.JournalMode)
}

func TestLoadFileConfig_UnknownKey(t *testing.T) {
	path := writeConfig(t, `dblog_fiel = "typo"`)
	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestApplyFileConfig_RespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	ms := 100
	fc := FileConfig{DBLogFile: "/file.sqlite3", LogLevel: "debug", BusyTimeoutMS: &ms}

	require.NoError(t, ApplyFileConfig(&cfg, fc, map[string]bool{FlagLogLevel: true}))
	assert.Equal(t, "/file.sqlite3", cfg.DBLogFile)
	assert.Equal(t, "warn", cfg.LogLevel, "flag wins over file")
	assert.Equal(t, 100*time.Millisecond, cfg.BusyTimeout)
	assert.Equal(t, "WAL", cfg.JournalMode, "empty file value leaves default")
}

func TestApplyFileConfig_NegativeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	ms := -1
	assert.Error(t, ApplyFileConfig(&cfg, FileConfig{BusyTimeoutMS: &ms}, nil))
}

func TestResolve(t *testing.T) {
	path := writeConfig(t, `
dblog_file = "/from/file.sqlite3"
log_level = "debug"
`)
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, &cfg)
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	require.NoError(t, Resolve(&cfg, fs, path, true))
	assert.Equal(t, "/from/file.sqlite3", cfg.DBLogFile)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestResolve_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")

	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, &cfg)

	assert.Error(t, Resolve(&cfg, fs, missing, true), "explicit path must exist")
	assert.NoError(t, Resolve(&cfg, fs, missing, false), "default path is optional")
}
