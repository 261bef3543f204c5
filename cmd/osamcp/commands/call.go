package commands

import (
	"fmt"
	"strings"

	"github.com/osatools/osamcp/pkg/protocol"
	"github.com/spf13/cobra"
)

// CallCmd creates the call command.
func CallCmd() *cobra.Command {
	var script string
	var scriptFile string

	cmd := &cobra.Command{
		Use:   "call tool",
		Short: "Invoke one tool against a spawned server",
		Long: `Spawn a server for the current scripts directory, initialize a session, and
invoke the named tool once with the given script.

Example:
  osamcp call app.finder --script 'get name of every window'
  cat open-note.applescript | osamcp call app.notes --script-file -`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(thisCmd *cobra.Command, args []string) error {
			body, err := resolveScript(script, scriptFile, thisCmd.InOrStdin())
			if err != nil {
				return err
			}

			c, err := connect("osamcp-cli")
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			result, err := c.CallTool(args[0], map[string]any{"script": body})
			if err != nil {
				return fmt.Errorf("%s", describeRPCError(err))
			}

			printToolResult(thisCmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "AppleScript body to run inside the application's tell block")
	cmd.Flags().StringVar(&scriptFile, "script-file", "", "File to read the script from (\"-\" reads stdin)")

	return cmd
}

func printToolResult(thisCmd *cobra.Command, result *protocol.ToolCallResult) {
	for _, content := range result.Content {
		if content.Type != "text" {
			continue
		}
		text := strings.TrimRight(content.Text, "\n")
		if text == "" {
			continue
		}
		fmt.Fprintln(thisCmd.OutOrStdout(), text)
	}
}
