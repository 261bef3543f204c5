package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osatools/osamcp/pkg/protocol"
)

// newCompletionServer serves a fixed chat completion and records the user
// message.
func newCompletionServer(t *testing.T, script string, userMessage *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("Failed to decode completion request: %v", err)
		}
		for _, message := range request.Messages {
			if message.Role == "user" && userMessage != nil {
				*userMessage = message.Content
			}
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, script)
	}))
}

func TestAskCmdDryRun(t *testing.T) {
	var userMessage string
	srv := newCompletionServer(t, "close every window", &userMessage)
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	cmd := AskCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"app.finder", "--dry-run", "close", "all", "windows"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	if buf.String() != "close every window\n" {
		t.Errorf("Expected the generated script, got %q", buf.String())
	}
	if !strings.Contains(userMessage, "finder") {
		t.Errorf("Expected the application in the request, got %q", userMessage)
	}
	if !strings.Contains(userMessage, "close all windows") {
		t.Errorf("Expected the request text, got %q", userMessage)
	}
}

func TestAskCmdGeneratesAndCalls(t *testing.T) {
	srv := newCompletionServer(t, "```applescript\nclose every window\n```", nil)
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	var calledScript string
	cleanup := setupMockClient(func(method string, params json.RawMessage) (any, *protocol.ResponseError) {
		if method != "tools/call" {
			t.Errorf("Expected method 'tools/call', got %q", method)
		}
		_, calledScript = decodeCallParams(t, params)
		return textResult("windows closed\n"), nil
	})
	defer cleanup()

	cmd := AskCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"app.finder", "close", "all", "windows"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	if calledScript != "close every window" {
		t.Errorf("Expected the unfenced script as the argument, got %q", calledScript)
	}
	assertContains(t, buf.String(), "windows closed")
}

func TestAskCmdRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cmd := AskCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"app.finder", "do", "something"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("Expected a missing key error, got %v", err)
	}
}
