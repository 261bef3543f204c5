package protocol

import "encoding/json"

// ClientIdentity names the connecting client inside initialize params.
type ClientIdentity struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ClientCapabilities carries the client's declared capabilities. Only the
// experimental bag is modeled; the server stores none of it.
type ClientCapabilities struct {
	Experimental json.RawMessage `json:"experimental,omitempty"`
}

// InitializeParams is the payload of the initialize method.
type InitializeParams struct {
	Client          ClientIdentity     `json:"client"`
	Capabilities    ClientCapabilities `json:"capabilities,omitempty"`
	ProtocolVersion string             `json:"protocol_version,omitempty"`
}

// ServerInfo identifies the server inside initialize results.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// ServerCapabilities advertises what the server can do. The tools and
// resources lists are always present on the wire, empty or not; the optional
// sections appear only when set.
type ServerCapabilities struct {
	Tools        []ToolDescription     `json:"tools"`
	Resources    []ResourceDescription `json:"resources"`
	Logging      json.RawMessage       `json:"logging,omitempty"`
	Experimental json.RawMessage       `json:"experimental,omitempty"`
}

// InitializeResult is the payload answering initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocol_version"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"server_info"`
}

// ToolDescription is the wire descriptor for one callable tool.
type ToolDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"input_schema,omitempty"`
}

// ResourceDescription is the wire descriptor for one readable resource.
// The server advertises none today; the shape exists for clients that
// decode full capability objects.
type ResourceDescription struct {
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
}

// ToolListParams is the payload of tools/list. The cursor is accepted for
// forward compatibility and ignored: the catalog always fits one page.
type ToolListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ToolListResult is the payload answering tools/list. NextCursor is never
// set while the catalog is single-page.
type ToolListResult struct {
	Tools      []ToolDescription `json:"tools"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

// ToolCallParams is the payload of tools/call. Arguments stay raw until the
// named tool defines how to read them.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResultContent is one block of tool output.
type ToolResultContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResult is the payload answering a successful tools/call.
type ToolCallResult struct {
	Content []ToolResultContent `json:"content"`
}

// PingParams is the payload of ping. A nil message echoes the default.
type PingParams struct {
	Message *string `json:"message,omitempty"`
}

// PingResult is the payload answering ping.
type PingResult struct {
	Message string `json:"message"`
}

// ToolErrorData is the data object attached to tool execution failures.
// Status is the interpreter exit code, or -1 when the run was cut short.
type ToolErrorData struct {
	Stderr string `json:"stderr"`
	Status int    `json:"status"`
}
