package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/osatools/osamcp/pkg/client"
	"github.com/osatools/osamcp/pkg/jsonutils"
	"github.com/osatools/osamcp/pkg/protocol"
)

// sentinel errors.
var (
	ErrScriptRequired = fmt.Errorf("a script is required: pass --script, --script-file, or \"-\" to read stdin")
)

// CreateClientFunc is the function used to create MCP clients backed by a spawned server.
// This can be replaced in tests to use a fake transport.
var CreateClientFunc = func(serverCmd, scriptsDir string) (*client.Client, error) {
	var command []string
	if serverCmd != "" {
		command = client.ParseCommandString(serverCmd)
	} else {
		var err error
		command, err = client.ServerCommand(scriptsDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving server command: %w", err)
		}
	}
	return client.New(command)
}

// connect spawns a server, initializes the session, and returns the ready client.
func connect(clientName string) (*client.Client, error) {
	c, err := CreateClientFunc(ServerCommand, ScriptsDir)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}
	if _, err := c.Initialize(clientName, Version); err != nil {
		closeErr := c.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("error initializing session: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("error initializing session: %w", err)
	}
	return c, nil
}

// resolveScript resolves the script source for call-style commands: --script wins, then
// --script-file, where "-" reads stdin.
func resolveScript(script, scriptFile string, stdin io.Reader) (string, error) {
	if script != "" {
		return script, nil
	}
	if scriptFile == "" {
		return "", ErrScriptRequired
	}
	if scriptFile == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("error reading script from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(scriptFile)
	if err != nil {
		return "", fmt.Errorf("error reading script file: %w", err)
	}
	return string(data), nil
}

// FormatAndPrintResponse formats and prints a response in the format specified by
// FormatOption.
func FormatAndPrintResponse(out io.Writer, resp any, err error) error {
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	output, err := jsonutils.Format(resp, FormatOption)
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}

	fmt.Fprintln(out, output)
	return nil
}

// describeRPCError renders a structured server error with its stderr payload when present.
func describeRPCError(err error) string {
	var rpcErr *protocol.ResponseError
	if !errors.As(err, &rpcErr) {
		return err.Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "server error %d: %s", rpcErr.Code, rpcErr.Message)
	if data, ok := rpcErr.Data.(map[string]any); ok {
		if stderr, ok := data["stderr"].(string); ok && strings.TrimSpace(stderr) != "" {
			sb.WriteString("\n")
			sb.WriteString(strings.TrimRight(stderr, "\n"))
		}
	}
	return sb.String()
}
