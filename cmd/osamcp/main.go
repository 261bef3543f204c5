/*
Package main implements the osamcp command line interface.
*/
package main

import (
	"os"

	"github.com/osatools/osamcp/cmd/osamcp/commands"
	"github.com/spf13/cobra"
)

// Build parameters.
var (
	Version string
)

func init() {
	if Version != "" {
		commands.Version = Version
	}
}

func main() {
	cobra.EnableCommandSorting = false

	rootCmd := commands.RootCmd()
	rootCmd.AddCommand(
		commands.VersionCmd(),
		commands.ServeCmd(),
		commands.ToolsCmd(),
		commands.CallCmd(),
		commands.AskCmd(),
		commands.ShellCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
