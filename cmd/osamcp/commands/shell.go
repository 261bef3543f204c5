package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/osatools/osamcp/pkg/client"
	"github.com/osatools/osamcp/pkg/llm"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// shell output colors.
var (
	bannerColor = color.New(color.FgCyan)
	scriptColor = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
)

// ShellCmd creates the shell command.
func ShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell against a spawned server",
		Long: `Spawn a server for the current scripts directory and drive it interactively.
The shell keeps one session open; tools, call, ask, and ping all go through
the same connection.`,
		SilenceUsage: true,
		RunE: func(thisCmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				color.NoColor = true
			}

			c, err := connect("osamcp-shell")
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			out := thisCmd.OutOrStdout()
			bannerColor.Fprintf(out, "osamcp > Shell (%s)\n", Version)
			bannerColor.Fprintf(out, "osamcp > Scripts directory: %s\n", ScriptsDir)
			bannerColor.Fprintln(out, "osamcp > Type '/h' for help or '/q' to quit")

			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			defer func() { _ = line.Close() }()

			defer setUpHistory(line)()
			setUpCompleter(line)

			for {
				input, err := line.Prompt("osamcp > ")
				if err != nil {
					if errors.Is(err, liner.ErrPromptAborted) {
						fmt.Fprintln(out, "Exiting osamcp shell")
						break
					}
					fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
					break
				}

				input = strings.TrimSpace(input)
				if input == "" {
					continue
				}

				line.AppendHistory(input)

				if input == "/q" || input == "/quit" || input == "exit" {
					fmt.Fprintln(out, "Exiting osamcp shell")
					break
				}

				if input == "/h" || input == "/help" || input == "help" {
					printShellHelp(thisCmd)
					continue
				}

				command, rest, _ := strings.Cut(input, " ")
				rest = strings.TrimSpace(rest)

				if err := runShellCommand(thisCmd, c, command, rest); err != nil {
					errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
				}
			}

			return nil
		},
	}
}

func runShellCommand(thisCmd *cobra.Command, c *client.Client, command, rest string) error {
	out := thisCmd.OutOrStdout()

	switch command {
	case "tools":
		result, err := c.ListTools()
		return FormatAndPrintResponse(out, result, err)
	case "ping":
		message, err := c.Ping(rest)
		if err != nil {
			return fmt.Errorf("%s", describeRPCError(err))
		}
		fmt.Fprintln(out, message)
		return nil
	case "call":
		toolName, script, _ := strings.Cut(rest, " ")
		script = strings.TrimSpace(script)
		if toolName == "" || script == "" {
			fmt.Fprintln(out, "Usage: call <tool> <script>")
			return nil
		}
		return shellCallTool(thisCmd, c, toolName, script)
	case "ask":
		toolName, request, _ := strings.Cut(rest, " ")
		request = strings.TrimSpace(request)
		if toolName == "" || request == "" {
			fmt.Fprintln(out, "Usage: ask <tool> <request>")
			return nil
		}
		llmClient, err := llm.NewClient("")
		if err != nil {
			return fmt.Errorf("error creating completion client: %w", err)
		}
		script, err := llmClient.GenerateScript(thisCmd.Context(),
			fmt.Sprintf("In the %s application: %s", strings.TrimPrefix(toolName, "app."), request))
		if err != nil {
			return fmt.Errorf("error generating script: %w", err)
		}
		scriptColor.Fprintln(out, script)
		return shellCallTool(thisCmd, c, toolName, script)
	case "format":
		if rest == "" {
			fmt.Fprintf(out, "Current format: %s\n", FormatOption)
			return nil
		}
		switch rest {
		case "table", "json", "pretty":
			FormatOption = rest
			fmt.Fprintf(out, "Format set to: %s\n", FormatOption)
		default:
			fmt.Fprintln(out, "Invalid format. Use: table, json, or pretty")
		}
		return nil
	default:
		fmt.Fprintf(out, "Unknown command: %s (type '/h' for help)\n", command)
		return nil
	}
}

func shellCallTool(thisCmd *cobra.Command, c *client.Client, toolName, script string) error {
	result, err := c.CallTool(toolName, map[string]any{"script": script})
	if err != nil {
		return fmt.Errorf("%s", describeRPCError(err))
	}
	return FormatAndPrintResponse(thisCmd.OutOrStdout(), result, nil)
}

func setUpHistory(line *liner.State) func() {
	historyFile := filepath.Join(os.Getenv("HOME"), ".osamcp_history")
	if f, err := os.Open(filepath.Clean(historyFile)); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	return func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}
}

func setUpCompleter(line *liner.State) {
	line.SetCompleter(func(line string) (c []string) {
		commands := []string{
			"tools",
			"call",
			"ask",
			"ping",
			"format",
			"help",
			"exit",
			"/h",
			"/q",
			"/help",
			"/quit",
		}
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, line) {
				c = append(c, cmd)
			}
		}
		return
	})
}

func printShellHelp(thisCmd *cobra.Command) {
	fmt.Fprintln(thisCmd.OutOrStdout(), "osamcp shell commands:")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  tools                      List available tools")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  call <tool> <script>       Run a script in the named application")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  ask <tool> <request>       Generate a script from a request and run it")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  ping [message]             Check that the server is responsive")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  format [json|pretty|table] Get or set output format")
	fmt.Fprintln(thisCmd.OutOrStdout(), "Special commands:")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  /h, /help                  Show this help")
	fmt.Fprintln(thisCmd.OutOrStdout(), "  /q, /quit, exit            Exit the shell")
}
