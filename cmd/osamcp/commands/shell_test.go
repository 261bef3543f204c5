package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/osatools/osamcp/pkg/client"
	"github.com/osatools/osamcp/pkg/protocol"
	"github.com/spf13/cobra"
)

// newShellFixture returns a command with captured output and a client backed
// by the handler.
func newShellFixture(handler func(method string, params json.RawMessage) (any, *protocol.ResponseError)) (*cobra.Command, *bytes.Buffer, *client.Client) {
	cmd := ShellCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	c := client.NewWithTransport(&handlerTransport{handler: handler})
	return cmd, buf, c
}

func TestRunShellCommandTools(t *testing.T) {
	cmd, buf, c := newShellFixture(func(method string, _ json.RawMessage) (any, *protocol.ResponseError) {
		if method != "tools/list" {
			t.Errorf("Expected method 'tools/list', got %q", method)
		}
		return protocol.ToolListResult{Tools: []protocol.ToolDescription{
			{Name: "app.finder", Description: "Execute AppleScript commands in the Finder application context."},
		}}, nil
	})

	if err := runShellCommand(cmd, c, "tools", ""); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "app.finder")
}

func TestRunShellCommandPing(t *testing.T) {
	cmd, buf, c := newShellFixture(func(method string, params json.RawMessage) (any, *protocol.ResponseError) {
		if method != "ping" {
			t.Errorf("Expected method 'ping', got %q", method)
		}
		var decoded protocol.PingParams
		if err := json.Unmarshal(params, &decoded); err != nil {
			t.Fatalf("Failed to decode ping params: %v", err)
		}
		message := "pong"
		if decoded.Message != nil {
			message = *decoded.Message
		}
		return protocol.PingResult{Message: message}, nil
	})

	if err := runShellCommand(cmd, c, "ping", ""); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "pong")

	buf.Reset()
	if err := runShellCommand(cmd, c, "ping", "hello"); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "hello")
}

func TestRunShellCommandCall(t *testing.T) {
	cmd, buf, c := newShellFixture(func(method string, params json.RawMessage) (any, *protocol.ResponseError) {
		if method != "tools/call" {
			t.Errorf("Expected method 'tools/call', got %q", method)
		}
		name, script := decodeCallParams(t, params)
		if name != "app.finder" {
			t.Errorf("Expected tool 'app.finder', got %q", name)
		}
		if script != "activate window 1" {
			t.Errorf("Expected the remainder as the script, got %q", script)
		}
		return textResult("done\n"), nil
	})

	if err := runShellCommand(cmd, c, "call", "app.finder activate window 1"); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "done")
}

func TestRunShellCommandCallUsage(t *testing.T) {
	cmd, buf, c := newShellFixture(func(_ string, _ json.RawMessage) (any, *protocol.ResponseError) {
		t.Error("Expected no request for a bare call")
		return nil, nil
	})

	if err := runShellCommand(cmd, c, "call", "app.finder"); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "Usage: call")
}

func TestRunShellCommandFormat(t *testing.T) {
	oldFormat := FormatOption
	defer func() { FormatOption = oldFormat }()

	cmd, buf, c := newShellFixture(nil)

	if err := runShellCommand(cmd, c, "format", ""); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "Current format")

	buf.Reset()
	if err := runShellCommand(cmd, c, "format", "json"); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	if FormatOption != "json" {
		t.Errorf("Expected format switched to json, got %q", FormatOption)
	}

	buf.Reset()
	if err := runShellCommand(cmd, c, "format", "yaml"); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "Invalid format")
}

func TestRunShellCommandUnknown(t *testing.T) {
	cmd, buf, c := newShellFixture(nil)

	if err := runShellCommand(cmd, c, "frobnicate", ""); err != nil {
		t.Fatalf("runShellCommand returned error: %v", err)
	}
	assertContains(t, buf.String(), "Unknown command")
}

func TestPrintShellHelp(t *testing.T) {
	cmd := ShellCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	printShellHelp(cmd)

	assertContains(t, buf.String(), "tools")
	assertContains(t, buf.String(), "call <tool> <script>")
	assertContains(t, buf.String(), "/q, /quit, exit")
}
