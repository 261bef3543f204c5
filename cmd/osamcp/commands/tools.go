package commands

import (
	"encoding/json"
	"fmt"

	"github.com/osatools/osamcp/pkg/catalog"
	"github.com/spf13/cobra"
)

// ToolsCmd creates the tools command.
func ToolsCmd() *cobra.Command {
	var rawJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools discovered in the scripts directory",
		Long: `List the tools the server would expose for the current scripts directory.
The scan happens in-process; no server is spawned.`,
		SilenceUsage: true,
		RunE: func(thisCmd *cobra.Command, _ []string) error {
			registry, err := catalog.Load(ScriptsDir)
			if err != nil {
				return fmt.Errorf("error loading tool catalog: %w", err)
			}

			if rawJSON {
				data, err := json.MarshalIndent(registry.Descriptors(), "", "  ")
				if err != nil {
					return fmt.Errorf("error encoding descriptors: %w", err)
				}
				fmt.Fprintln(thisCmd.OutOrStdout(), string(data))
				return nil
			}

			rows := make([]map[string]any, 0, registry.Len())
			for _, tool := range registry.Tools() {
				rows = append(rows, map[string]any{
					"name":        tool.Name,
					"identity":    tool.AppName,
					"description": tool.Description,
				})
			}
			return FormatAndPrintResponse(thisCmd.OutOrStdout(), map[string]any{"tools": rows}, nil)
		},
	}

	cmd.Flags().BoolVar(&rawJSON, "json", false, "Print raw tool descriptors as JSON")

	return cmd
}
