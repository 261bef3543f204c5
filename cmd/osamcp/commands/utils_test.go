package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osatools/osamcp/pkg/protocol"
)

func TestResolveScriptFlagWins(t *testing.T) {
	got, err := resolveScript("activate", "ignored.txt", strings.NewReader("unused"))
	if err != nil {
		t.Fatalf("resolveScript returned error: %v", err)
	}
	if got != "activate" {
		t.Errorf("Expected the --script value, got %q", got)
	}
}

func TestResolveScriptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.applescript")
	if err := os.WriteFile(path, []byte("open location \"https://example.com\""), 0o600); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	got, err := resolveScript("", path, nil)
	if err != nil {
		t.Fatalf("resolveScript returned error: %v", err)
	}
	if !strings.Contains(got, "example.com") {
		t.Errorf("Expected file contents, got %q", got)
	}
}

func TestResolveScriptFromStdin(t *testing.T) {
	got, err := resolveScript("", "-", strings.NewReader("beep"))
	if err != nil {
		t.Fatalf("resolveScript returned error: %v", err)
	}
	if got != "beep" {
		t.Errorf("Expected stdin contents, got %q", got)
	}
}

func TestResolveScriptRequired(t *testing.T) {
	_, err := resolveScript("", "", nil)
	if !errors.Is(err, ErrScriptRequired) {
		t.Errorf("Expected ErrScriptRequired, got %v", err)
	}
}

func TestResolveScriptMissingFile(t *testing.T) {
	_, err := resolveScript("", filepath.Join(t.TempDir(), "absent.txt"), nil)
	if err == nil {
		t.Error("Expected an error for a missing script file")
	}
}

func TestDescribeRPCErrorPlain(t *testing.T) {
	err := fmt.Errorf("connection refused")
	if got := describeRPCError(err); got != "connection refused" {
		t.Errorf("Expected passthrough, got %q", got)
	}
}

func TestDescribeRPCErrorStructured(t *testing.T) {
	rpcErr := protocol.Errorf(protocol.CodeMethodNotFound, "method 'resources/list' not implemented")
	got := describeRPCError(fmt.Errorf("error calling tool: %w", rpcErr))
	if got != "server error -32601: method 'resources/list' not implemented" {
		t.Errorf("Unexpected rendering: %q", got)
	}
}

func TestDescribeRPCErrorWithStderr(t *testing.T) {
	rpcErr := protocol.Errorf(protocol.CodeToolExecFailed, "tool `app.finder` execution failed")
	rpcErr.Data = map[string]any{"stderr": "execution error: boom\n", "status": float64(1)}

	got := describeRPCError(rpcErr)
	if !strings.Contains(got, "server error -32010") {
		t.Errorf("Expected the code in the rendering, got %q", got)
	}
	if !strings.Contains(got, "execution error: boom") {
		t.Errorf("Expected stderr in the rendering, got %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("Expected trailing newline trimmed, got %q", got)
	}
}

func TestFormatAndPrintResponseError(t *testing.T) {
	wrapped := fmt.Errorf("boom")
	err := FormatAndPrintResponse(new(bytes.Buffer), nil, wrapped)
	if !errors.Is(err, wrapped) {
		t.Errorf("Expected the error wrapped, got %v", err)
	}
}

func TestFormatAndPrintResponseTable(t *testing.T) {
	oldFormat := FormatOption
	FormatOption = "table"
	defer func() { FormatOption = oldFormat }()

	buf := new(bytes.Buffer)
	result := protocol.ToolListResult{Tools: []protocol.ToolDescription{
		{Name: "app.finder", Description: "Execute AppleScript commands in the Finder application context."},
	}}
	if err := FormatAndPrintResponse(buf, result, nil); err != nil {
		t.Fatalf("FormatAndPrintResponse returned error: %v", err)
	}

	assertContains(t, buf.String(), "app.finder")
	assertContains(t, buf.String(), "NAME")
}
