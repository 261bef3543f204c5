package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/osatools/osamcp/pkg/client"
	"github.com/osatools/osamcp/pkg/protocol"
)

// handlerTransport loops written requests through a handler so command tests
// can drive a real client without spawning a server process.
type handlerTransport struct {
	handler func(method string, params json.RawMessage) (any, *protocol.ResponseError)
	methods []string
	pending []string
}

func (h *handlerTransport) Write(payload string) error {
	request, err := protocol.DecodeRequest([]byte(payload))
	if err != nil {
		return err
	}
	h.methods = append(h.methods, request.Method)
	if request.IsNotification() {
		return nil
	}

	var envelope *protocol.ResponseEnvelope
	result, rpcErr := h.handler(request.Method, request.Params)
	if rpcErr != nil {
		envelope = protocol.NewError(request.ID, rpcErr)
	} else {
		envelope, err = protocol.NewSuccess(request.ID, result)
		if err != nil {
			return err
		}
	}

	frame, err := envelope.Encode()
	if err != nil {
		return err
	}
	h.pending = append(h.pending, frame)
	return nil
}

func (h *handlerTransport) Read() (string, error) {
	if len(h.pending) == 0 {
		return "", io.EOF
	}
	next := h.pending[0]
	h.pending = h.pending[1:]
	return next, nil
}

func (h *handlerTransport) Close() error {
	return nil
}

// setupMockClient swaps CreateClientFunc for one backed by the handler and
// returns a cleanup function restoring the original. The handler only sees
// methods beyond initialize; initialize is answered automatically.
func setupMockClient(handler func(method string, params json.RawMessage) (any, *protocol.ResponseError)) func() {
	originalFunc := CreateClientFunc

	CreateClientFunc = func(_, _ string) (*client.Client, error) {
		wrapped := func(method string, params json.RawMessage) (any, *protocol.ResponseError) {
			if method == "initialize" {
				return protocol.InitializeResult{
					ProtocolVersion: protocol.Version,
					ServerInfo:      protocol.ServerInfo{Name: "osamcp", Version: "test"},
				}, nil
			}
			return handler(method, params)
		}
		return client.NewWithTransport(&handlerTransport{handler: wrapped}), nil
	}

	return func() {
		CreateClientFunc = originalFunc
	}
}

// assertContains checks if the output contains the expected string.
func assertContains(t *testing.T, output string, expected string) {
	t.Helper()
	if !bytes.Contains([]byte(output), []byte(expected)) {
		t.Errorf("Expected output to contain %q, got: %s", expected, output)
	}
}
