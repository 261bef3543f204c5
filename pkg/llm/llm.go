/*
Package llm turns free-text automation requests into AppleScript bodies
through an OpenAI-compatible chat completions endpoint.
*/
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Defaults for the completion call.
const (
	DefaultModel   = "gpt-4.1-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60 * time.Second
)

// SystemInstruction pins completions to bare script bodies. Generated text
// runs inside a tell block, so the model must not produce one itself.
const SystemInstruction = "You write short AppleScript bodies that can run inside a `tell application` block. " +
	"Respond with AppleScript code only, no explanations."

// ErrNoAPIKey reports a missing OPENAI_API_KEY.
var ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable is not set")

// Client calls one chat completions endpoint with one model.
type Client struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// NewClient builds a client from the environment: OPENAI_API_KEY is
// required, OPENAI_BASE_URL optionally redirects the endpoint. An empty
// model selects the default.
func NewClient(model string) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      model,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// GenerateScript returns one code-only completion for the request text.
func (c *Client) GenerateScript(ctx context.Context, request string) (string, error) {
	requestData := map[string]any{
		"model": c.Model,
		"messages": []map[string]any{
			{"role": "system", "content": SystemInstruction},
			{"role": "user", "content": request},
		},
	}

	requestJSON, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	url := strings.TrimSuffix(c.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestJSON))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	script := StripCodeFences(completion.Choices[0].Message.Content)
	if script == "" {
		return "", errors.New("completion contained no script")
	}
	return script, nil
}

// StripCodeFences unwraps a Markdown code fence around a completion. Models
// fence their output despite instructions often enough that the caller
// should never see the fence.
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx >= 0 {
		content = content[idx+1:] // drop the opening fence with its language tag
	}
	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
