/*
Package commands implements individual commands for the osamcp CLI.
*/
package commands

import (
	"github.com/spf13/cobra"
)

// defaults shared by the commands that spawn or run a server.
const (
	DefaultScriptsDir = "./AppScripts"
	DefaultTransport  = "stdio"
)

var (
	// FormatOption is the output format for listing commands, valid values are "table", "json",
	// and "pretty". Default is "table".
	FormatOption = "table"
	// ScriptsDir is the directory scanned for application scripts.
	ScriptsDir = DefaultScriptsDir
	// ServerCommand overrides the command used to spawn a server for call/ask/shell. Empty
	// means re-exec the current binary with "serve".
	ServerCommand string
)

// RootCmd creates the root command.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "osamcp",
		Short: "osamcp exposes macOS applications as AppleScript automation tools",
		Long: `osamcp is a command line interface and server that exposes macOS applications
as AppleScript automation tools over the Model Context Protocol (MCP).
It discovers applications from a scripts directory, serves them over a
length-framed JSON-RPC channel, and can call them directly from the CLI.`,
	}

	cmd.PersistentFlags().StringVarP(&FormatOption, "format", "f", "table", "Output format (table, json, pretty)")
	cmd.PersistentFlags().StringVar(&ScriptsDir, "scripts-dir", DefaultScriptsDir, "Directory scanned for application scripts")
	cmd.PersistentFlags().StringVar(&ServerCommand, "server-cmd", "", "Command used to spawn a server (default: current binary with \"serve\")")

	return cmd
}
