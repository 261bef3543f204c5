/*
Package client spawns an osamcp server as a subprocess and drives it over
framed stdio.

Requests carry sequential integer ids and each call blocks until the
response with the matching id arrives. The client is not safe for
concurrent calls; callers serialize access the way a shell loop does.
*/
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/osatools/osamcp/pkg/protocol"
	"github.com/osatools/osamcp/pkg/transport"
)

// ErrCommandRequired rejects a spawn with no command line.
var ErrCommandRequired = errors.New("a server command is required")

// Client owns one spawned server process and the framed pipes to it.
type Client struct {
	transport transport.Transport
	cmd       *exec.Cmd
	nextID    int
}

// New spawns command and connects the framed transport to its stdio. The
// child's stderr passes through to this process's stderr so server logs
// stay visible.
func New(command []string) (*Client, error) {
	if len(command) == 0 {
		return nil, ErrCommandRequired
	}

	cmd := exec.Command(command[0], command[1:]...) // #nosec G204 -- the command is operator-provided
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("error creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error starting server: %w", err)
	}

	return &Client{
		transport: transport.NewStdio(stdout, stdin),
		cmd:       cmd,
		nextID:    1,
	}, nil
}

// NewWithTransport wraps an existing transport without spawning anything.
func NewWithTransport(t transport.Transport) *Client {
	return &Client{transport: t, nextID: 1}
}

// Initialize negotiates the session and returns the server's identity and
// advertised tools.
func (c *Client) Initialize(clientName, clientVersion string) (*protocol.InitializeResult, error) {
	params := protocol.InitializeParams{
		Client:          protocol.ClientIdentity{Name: clientName, Version: clientVersion},
		ProtocolVersion: protocol.Version,
	}

	var result protocol.InitializeResult
	if err := c.call("initialize", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTools fetches the full tool catalog.
func (c *Client) ListTools() (*protocol.ToolListResult, error) {
	var result protocol.ToolListResult
	if err := c.call("tools/list", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool invokes one tool. A structured error from the server is returned
// as a *protocol.ResponseError.
func (c *Client) CallTool(name string, arguments any) (*protocol.ToolCallResult, error) {
	params := map[string]any{"name": name, "arguments": arguments}

	var result protocol.ToolCallResult
	if err := c.call("tools/call", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping round-trips a liveness probe. An empty message asks for the default.
func (c *Client) Ping(message string) (string, error) {
	params := map[string]any{}
	if message != "" {
		params["message"] = message
	}

	var result protocol.PingResult
	if err := c.call("ping", params, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// Notify sends a fire-and-forget notification. No response is read.
func (c *Client) Notify(method string, params any) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("error encoding %s params: %w", method, err)
	}

	payload, err := json.Marshal(protocol.RequestEnvelope{
		Protocol: protocol.JSONRPCVersion,
		Method:   method,
		Params:   paramsJSON,
	})
	if err != nil {
		return fmt.Errorf("error encoding %s notification: %w", method, err)
	}
	return c.transport.Write(string(payload))
}

// call sends one request and blocks until the response with the same id
// arrives, decoding its result into out.
func (c *Client) call(method string, params any, out any) error {
	id := c.nextID
	c.nextID++

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("error encoding %s params: %w", method, err)
	}

	payload, err := json.Marshal(protocol.RequestEnvelope{
		Protocol: protocol.JSONRPCVersion,
		ID:       id,
		Method:   method,
		Params:   paramsJSON,
	})
	if err != nil {
		return fmt.Errorf("error encoding %s request: %w", method, err)
	}
	if err := c.transport.Write(string(payload)); err != nil {
		return fmt.Errorf("error sending %s request: %w", method, err)
	}

	for {
		frame, err := c.transport.Read()
		if err != nil {
			return fmt.Errorf("error reading %s response: %w", method, err)
		}

		response, err := protocol.DecodeResponse([]byte(frame))
		if err != nil {
			return fmt.Errorf("error decoding %s response: %w", method, err)
		}
		if !matchesID(response.ID, id) {
			// Not ours; responses to earlier abandoned calls are skipped.
			continue
		}
		if response.Error != nil {
			return response.Error
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(response.Result, out); err != nil {
			return fmt.Errorf("error decoding %s result: %w", method, err)
		}
		return nil
	}
}

// matchesID compares a decoded response id against the integer request id.
// JSON numbers decode as float64.
func matchesID(got any, want int) bool {
	number, ok := got.(float64)
	return ok && int(number) == want
}

// Close terminates the server. The write side closes first so a healthy
// server can exit on its own; the kill that follows is unconditional, and
// the process is always reaped.
func (c *Client) Close() error {
	if c.transport != nil {
		_ = c.transport.Close()
	}
	if c.cmd == nil {
		return nil
	}
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	if err := c.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("error reaping server: %w", err)
		}
	}
	return nil
}

// ParseCommandString splits a command line on whitespace. Quoting is not
// interpreted; server commands are simple paths plus flags.
func ParseCommandString(cmdStr string) []string {
	if cmdStr == "" {
		return nil
	}
	return strings.Fields(cmdStr)
}

// ServerCommand builds the default command line that serves scriptsDir over
// stdio using this same executable.
func ServerCommand(scriptsDir string) ([]string, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("error locating executable: %w", err)
	}
	command := []string{executable, "serve", "--transport", transport.KindStdio}
	if scriptsDir != "" {
		command = append(command, "--scripts-dir", scriptsDir)
	}
	return command, nil
}
