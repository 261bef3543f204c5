/*
Package server routes framed JSON-RPC requests to the tool catalog and the
AppleScript runner.

The loop owns exactly one session. Malformed frames and undecodable requests
are logged and dropped; write failures and interpreter spawn failures
terminate the loop because the stream or the host is no longer trustworthy.
*/
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/osatools/osamcp/pkg/catalog"
	"github.com/osatools/osamcp/pkg/observability"
	"github.com/osatools/osamcp/pkg/osascript"
	"github.com/osatools/osamcp/pkg/protocol"
	"github.com/osatools/osamcp/pkg/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Identity advertised in initialize results.
const (
	Name        = "osamcp"
	Description = "AppleScript automation server"
)

// Server drives one connection worth of dispatch.
type Server struct {
	transport transport.Transport
	session   *Session
	registry  *catalog.Registry
	runner    *osascript.Runner
	info      protocol.ServerInfo
	logger    zerolog.Logger
}

// New assembles a server around its collaborators. version is stamped into
// initialize results.
func New(t transport.Transport, registry *catalog.Registry, runner *osascript.Runner, version string) *Server {
	return &Server{
		transport: t,
		session:   NewSession(),
		registry:  registry,
		runner:    runner,
		info: protocol.ServerInfo{
			Name:        Name,
			Version:     version,
			Description: Description,
		},
		logger: log.With().Str("component", "server").Logger(),
	}
}

// Run pumps frames until the peer closes the stream. It returns nil on a
// clean shutdown and an error when the transport or the host gives out.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Int("tools", s.registry.Len()).Msg("serving")

	for {
		frame, err := s.transport.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info().Msg("stream closed, shutting down")
				return nil
			}
			if transport.IsRecoverable(err) {
				s.logger.Warn().Err(err).Msg("dropping malformed frame")
				observability.RecordFrameDropped()
				continue
			}
			return fmt.Errorf("error reading frame: %w", err)
		}

		request, err := protocol.DecodeRequest([]byte(frame))
		if err != nil {
			s.logger.Warn().Err(err).Msg("dropping undecodable request")
			observability.RecordFrameDropped()
			continue
		}

		if request.IsNotification() {
			s.handleNotification(request)
			continue
		}

		if err := s.respond(ctx, request); err != nil {
			return err
		}
	}
}

// respond routes one answerable request and writes exactly one response.
// Handlers return either a result or a structured error; a non-nil error
// from this method means the loop must stop.
func (s *Server) respond(ctx context.Context, request *protocol.RequestEnvelope) error {
	observability.RecordRequest(request.Method)

	var result any
	var rpcErr *protocol.ResponseError
	var err error

	switch request.Method {
	case "initialize":
		result, rpcErr = s.handleInitialize(request.Params)
	case "ping":
		result = s.handlePing(request.Params)
	case "tools/list":
		result = s.handleToolsList(request.Params)
	case "tools/call":
		result, rpcErr, err = s.handleToolsCall(ctx, request.Params)
	default:
		rpcErr = protocol.Errorf(protocol.CodeMethodNotFound, "method '%s' not implemented", request.Method)
	}
	if err != nil {
		return err
	}

	if rpcErr != nil {
		observability.RecordRequestError(request.Method, rpcErr.Code)
		s.logger.Warn().
			Str("method", request.Method).
			Int("code", rpcErr.Code).
			Msg(rpcErr.Message)
		return s.write(protocol.NewError(request.ID, rpcErr))
	}

	envelope, err := protocol.NewSuccess(request.ID, result)
	if err != nil {
		return fmt.Errorf("error encoding %s result: %w", request.Method, err)
	}
	return s.write(envelope)
}

func (s *Server) write(envelope *protocol.ResponseEnvelope) error {
	payload, err := envelope.Encode()
	if err != nil {
		return err
	}
	if err := s.transport.Write(payload); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}

// handleNotification processes requests that must never be answered.
func (s *Server) handleNotification(request *protocol.RequestEnvelope) {
	switch request.Method {
	case "shutdown":
		s.logger.Info().Msg("client requested shutdown")
	default:
		s.logger.Debug().Str("method", request.Method).Msg("ignoring notification")
	}
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *protocol.ResponseError) {
	if s.session.Initialized() {
		return nil, protocol.Errorf(protocol.CodeInvalidRequest, "initialize already called")
	}

	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil || p.Client.Name == "" {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "invalid initialize params: a client name is required")
	}

	s.session.MarkInitialized()
	s.logger.Info().
		Str("client", p.Client.Name).
		Str("client_version", p.Client.Version).
		Msg("session initialized")

	version := p.ProtocolVersion
	if version == "" {
		version = protocol.Version
	}

	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities: protocol.ServerCapabilities{
			Tools:     s.registry.Descriptors(),
			Resources: []protocol.ResourceDescription{},
		},
		ServerInfo: s.info,
	}, nil
}

// handlePing echoes the optional message. Malformed params are tolerated
// and answered with the default, keeping ping usable as a liveness probe.
func (s *Server) handlePing(params json.RawMessage) any {
	var p protocol.PingParams
	_ = json.Unmarshal(params, &p)

	message := "pong"
	if p.Message != nil {
		message = *p.Message
	}
	return protocol.PingResult{Message: message}
}

// handleToolsList returns the whole catalog. The cursor param is accepted
// and ignored: listings always fit one page, so next_cursor stays unset.
func (s *Server) handleToolsList(params json.RawMessage) any {
	var p protocol.ToolListParams
	_ = json.Unmarshal(params, &p)

	return protocol.ToolListResult{Tools: s.registry.Descriptors()}
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *protocol.ResponseError, error) {
	var p protocol.ToolCallParams
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "invalid tools/call params: a tool name is required"), nil
	}

	tool, ok := s.registry.Get(p.Name)
	if !ok {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "unknown tool `%s`", p.Name), nil
	}

	script, ok := scriptArgument(p.Arguments)
	if !ok {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "tool `%s` requires a `script` string argument", p.Name), nil
	}

	if err := s.runner.Validate(script); err != nil {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "tool `%s` rejected script: %v", p.Name, err), nil
	}

	s.logger.Info().Str("tool", tool.Name).Str("app", tool.AppName).Msg("running tool")

	started := time.Now()
	result, err := s.runner.Run(ctx, tool.AppName, script)
	if err != nil {
		return nil, nil, fmt.Errorf("error invoking interpreter for tool %s: %w", tool.Name, err)
	}
	elapsed := time.Since(started)

	switch {
	case result.TimedOut:
		observability.RecordToolRun(tool.Name, observability.OutcomeTimeout, elapsed)
		return nil, &protocol.ResponseError{
			Code:    protocol.CodeToolExecFailed,
			Message: fmt.Sprintf("tool `%s` execution timed out", p.Name),
			Data:    protocol.ToolErrorData{Stderr: result.Stderr, Status: result.Status},
		}, nil
	case result.Status != 0:
		observability.RecordToolRun(tool.Name, observability.OutcomeError, elapsed)
		return nil, &protocol.ResponseError{
			Code:    protocol.CodeToolExecFailed,
			Message: fmt.Sprintf("tool `%s` execution failed", p.Name),
			Data:    protocol.ToolErrorData{Stderr: result.Stderr, Status: result.Status},
		}, nil
	}

	observability.RecordToolRun(tool.Name, observability.OutcomeOK, elapsed)
	s.logger.Debug().Str("tool", tool.Name).Dur("elapsed", elapsed).Msg("tool completed")

	return protocol.ToolCallResult{
		Content: []protocol.ToolResultContent{{Type: "text", Text: result.Stdout}},
	}, nil, nil
}

// scriptArgument extracts the required "script" string from raw arguments.
func scriptArgument(arguments json.RawMessage) (string, bool) {
	if len(arguments) == 0 {
		return "", false
	}
	var args struct {
		Script *string `json:"script"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.Script == nil {
		return "", false
	}
	return *args.Script, true
}
