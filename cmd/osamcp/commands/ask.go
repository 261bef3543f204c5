package commands

import (
	"fmt"
	"strings"

	"github.com/osatools/osamcp/pkg/catalog"
	"github.com/osatools/osamcp/pkg/llm"
	"github.com/spf13/cobra"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var model string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ask tool request...",
		Short: "Generate a script from a natural language request and run it",
		Long: `Ask a language model to write the AppleScript body for a request, show the
generated script, then invoke the named tool with it.

Requires OPENAI_API_KEY; OPENAI_BASE_URL overrides the endpoint.

Example:
  osamcp ask app.finder "close every open window"
  osamcp ask app.notes --dry-run "create a note titled Groceries"`,
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(thisCmd *cobra.Command, args []string) error {
			toolName := args[0]
			request := strings.Join(args[1:], " ")

			appName := strings.TrimPrefix(toolName, "app.")
			if registry, err := catalog.Load(ScriptsDir); err == nil {
				if tool, ok := registry.Get(toolName); ok {
					appName = tool.AppName
				}
			}

			llmClient, err := llm.NewClient(model)
			if err != nil {
				return fmt.Errorf("error creating completion client: %w", err)
			}

			script, err := llmClient.GenerateScript(thisCmd.Context(),
				fmt.Sprintf("In the %s application: %s", appName, request))
			if err != nil {
				return fmt.Errorf("error generating script: %w", err)
			}

			if dryRun {
				fmt.Fprintln(thisCmd.OutOrStdout(), script)
				return nil
			}

			// Echo the script on stderr so stdout carries only tool output.
			fmt.Fprintf(thisCmd.ErrOrStderr(), "-- generated script --\n%s\n--\n", script)

			c, err := connect("osamcp-cli")
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			result, err := c.CallTool(toolName, map[string]any{"script": script})
			if err != nil {
				return fmt.Errorf("%s", describeRPCError(err))
			}

			printToolResult(thisCmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Completion model (default "+llm.DefaultModel+")")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated script without calling the tool")

	return cmd
}
