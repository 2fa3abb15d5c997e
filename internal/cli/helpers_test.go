package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dblog/internal/store"
)

// execute runs the root command with args, isolated from the user's config.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		// nil would make cobra fall back to os.Args
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// queryValues returns the v column of table t in the SQLite file at path.
func queryValues(t *testing.T, path string) []string {
	t.Helper()

	s, err := store.Open(context.Background(), path, store.DefaultOptions())
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.DB().Query("SELECT v FROM t ORDER BY rowid")
	require.NoError(t, err)
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		require.NoError(t, rows.Scan(&v))
		values = append(values, v)
	}
	require.NoError(t, rows.Err())
	return values
}
