package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/dblog/internal/config"
	"github.com/roach88/dblog/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Config     config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dblog CLI.
//
// Run without a subcommand it serves the plugin protocol, since lightningd
// starts plugins with no arguments.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "dblog",
		Short: "Mirror lightningd database writes into a SQLite file",
		Long: `dblog is a lightningd plugin that receives every database write through
the db_write hook and applies it to its own SQLite file.

Writes that arrive before the plugin is initialized are buffered and
replayed in order once init names the file; later writes pass straight
through. Started without a subcommand, dblog speaks the plugin protocol
on stdin/stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			path, explicit := opts.ConfigPath, opts.ConfigPath != ""
			if !explicit {
				path = config.DefaultConfigPath()
			}
			if err := config.Resolve(&opts.Config, cmd.Flags(), path, explicit); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			if opts.Verbose {
				opts.Config.LogLevel = "debug"
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $HOME/.dblog/config.toml)")
	config.BindFlags(cmd.PersistentFlags(), &opts.Config)

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// logLevel returns the configured level; Validate has already accepted it.
func (o *RootOptions) logLevel() zerolog.Level {
	lvl, err := logging.ParseLevel(o.Config.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// consoleLogger logs human-readable lines to w at the configured level.
func (o *RootOptions) consoleLogger(w io.Writer) logging.Logger {
	return logging.NewConsole(w, o.logLevel())
}
