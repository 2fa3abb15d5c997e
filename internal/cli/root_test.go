package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dblog/internal/dblog"
)

func TestRootCommand_ListsSubcommands(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "apply")
	assert.Contains(t, out, "test")
	assert.Contains(t, out, "--dblog-file")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "--format", "xml", "test", ".")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "loud", "test", ".")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_MissingExplicitConfig(t *testing.T) {
	_, _, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "nope.toml"), "test", ".")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestRootCommand_ConfigFileSuppliesDatabase(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.sqlite3")
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dblog_file = \""+db+"\"\n"), 0644))

	batches := filepath.Join(dir, "batches.yaml")
	require.NoError(t, os.WriteFile(batches, []byte(`- ["CREATE TABLE t (v TEXT)", "INSERT INTO t VALUES ('x')"]`), 0644))

	_, _, err := execute(t, "", "--config", cfgPath, "apply", batches)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, queryValues(t, db))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.Equal(t, "inner", errors.Unwrap(wrapped).Error())
}

func TestWrapPluginError(t *testing.T) {
	cfgErr := wrapPluginError("init", dblog.NewConfigurationError("no dblog-file specified", nil))
	assert.Equal(t, ExitCommandError, cfgErr.Code)

	other := wrapPluginError("init", errors.New("disk full"))
	assert.Equal(t, ExitFailure, other.Code)
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer

	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Success("done", map[string]int{"n": 1}))
	assert.Equal(t, "done\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error("E_X", "broken"))
	assert.Equal(t, "Error [E_X]: broken\n", buf.String())

	buf.Reset()
	f.Format = "json"
	require.NoError(t, f.Success("done", map[string]int{"n": 1}))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, f.Error("E_X", "broken"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_X", resp.Error.Code)
}
