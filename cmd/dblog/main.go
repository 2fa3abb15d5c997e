// Command dblog is a lightningd plugin that mirrors database writes into a
// SQLite file, buffering writes seen before init and replaying them once
// the file is known.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/roach88/dblog/internal/cli"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cmd := cli.NewRootCommand()
	cmd.Version = getVersion()

	if err := cmd.Execute(); err != nil {
		// stdout belongs to the plugin protocol
		fmt.Fprintln(os.Stderr, "dblog:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
