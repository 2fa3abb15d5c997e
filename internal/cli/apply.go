package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dblog/internal/dblog"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	DB         string
	ReadyAfter int // batches delivered before the store-ready event; -1 = all
}

// ApplyResult summarizes an apply run.
type ApplyResult struct {
	DB      string      `json:"db"`
	Batches int         `json:"batches"`
	Stats   dblog.Stats `json:"stats"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <batches.yaml|->",
		Short: "Apply recorded write batches to a SQLite file",
		Long: `Feed a YAML list of batches through the same buffer and replay path the
plugin uses, then report what was deferred, replayed and executed.

The file is a list of batches, each a list of SQL commands:

  - ["CREATE TABLE t (v TEXT)"]
  - ["INSERT INTO t VALUES ('a')", "INSERT INTO t VALUES ('b')"]

By default every batch is buffered and replayed when the store opens.
--ready-after N opens the store after N batches so the rest go straight
through.

Examples:
  dblog apply --db mirror.sqlite3 batches.yaml
  dblog apply --db mirror.sqlite3 --ready-after 1 batches.yaml
  cat batches.yaml | dblog apply --db mirror.sqlite3 -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite file to write (default: dblog_file from config)")
	cmd.Flags().IntVar(&opts.ReadyAfter, "ready-after", -1, "open the store after this many batches (-1 = after all)")

	return cmd
}

func runApply(opts *ApplyOptions, source string, cmd *cobra.Command) error {
	batches, err := loadBatches(source, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load batches", err)
	}

	db := opts.DB
	if db == "" {
		db = opts.Config.DBLogFile
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.consoleLogger(cmd.ErrOrStderr())
	core := dblog.New(storeConnector(opts.Config.StoreOptions()), dblog.WithLogger(logger))
	defer core.Close()

	readyAt := opts.ReadyAfter
	if readyAt < 0 || readyAt > len(batches) {
		readyAt = len(batches)
	}

	for i, batch := range batches {
		if i == readyAt {
			if err := core.OnStoreReady(ctx, db); err != nil {
				return wrapPluginError("initialization failed", err)
			}
		}
		if _, err := core.OnWriteBatch(ctx, batch); err != nil {
			return wrapPluginError(fmt.Sprintf("batch %d failed", i), err)
		}
	}
	if readyAt == len(batches) {
		if err := core.OnStoreReady(ctx, db); err != nil {
			return wrapPluginError("initialization failed", err)
		}
	}

	result := ApplyResult{DB: db, Batches: len(batches), Stats: core.Stats()}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(
		fmt.Sprintf("Applied %d batches to %s (deferred %d, replayed %d, executed %d)",
			result.Batches, db, result.Stats.Deferred, result.Stats.Replayed, result.Stats.Executed),
		result,
	)
}

// loadBatches reads a YAML list of batches from a file, or stdin for "-".
func loadBatches(source string, stdin io.Reader) ([]dblog.Batch, error) {
	r := stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var raw [][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse batches: %w", err)
	}

	batches := make([]dblog.Batch, len(raw))
	for i, b := range raw {
		batches[i] = dblog.Batch(b)
	}
	return batches, nil
}
