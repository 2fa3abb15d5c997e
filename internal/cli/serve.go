package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/dblog/internal/dblog"
	"github.com/roach88/dblog/internal/logging"
	"github.com/roach88/dblog/internal/plugin"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Speak the lightningd plugin protocol on stdin/stdout",
		Long: `Run as a lightningd plugin.

Requests are read from stdin and answered on stdout; log lines are sent to
lightningd as log notifications. The database file comes from the
dblog-file plugin option, falling back to --dblog-file or the config file.

Example (lightningd config):
  plugin=/usr/local/bin/dblog
  dblog-file=/var/lib/lightning/mirror.sqlite3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	stream := plugin.NewStream(cmd.InOrStdin(), cmd.OutOrStdout())

	zl := zerolog.New(plugin.NewLogWriter(stream)).Level(opts.logLevel())
	logger := logging.NewZerologAdapterWithLogger(zl)

	core := dblog.New(storeConnector(opts.Config.StoreOptions()), dblog.WithLogger(logger))
	host := plugin.NewHost(stream, core,
		plugin.WithLogger(logger),
		plugin.WithFallbackFile(opts.Config.DBLogFile),
	)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", logging.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	serveErr := host.Serve(ctx)
	closeErr := core.Close()

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return wrapPluginError("plugin stopped", serveErr)
	}
	if closeErr != nil {
		return WrapExitError(ExitFailure, "close store", closeErr)
	}
	return nil
}
