package agui

import "encoding/json"

// Message roles. Role is meaningful for text-bearing messages; tool
// result messages always use RoleTool.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleTool      = "tool"
)

// Message is one entry of the conversation as sent to an agent server.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`

	// ToolCalls is set on assistant messages that invoke tools.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID and Name are set on tool (result) messages and reference
	// the call that produced the result.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolCall is a tool invocation attached to an assistant message.
type ToolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"` // always "function"
	Function Function `json:"function"`
}

// Function names the invoked tool and carries its JSON-serialized arguments.
type Function struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a callable tool in the request payload.
type Tool struct {
	Type     string      `json:"type"` // always "function"
	Function ToolDefined `json:"function"`
}

// ToolDefined is the schema half of a tool descriptor.
type ToolDefined struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ParameterSchema is a JSON-schema object describing tool parameters.
type ParameterSchema struct {
	Type       string              `json:"type"` // always "object"
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one named tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// RawState decodes an opaque state blob into a generic map, returning nil
// when the blob is empty or malformed. Useful for display layers that only
// need best-effort inspection.
func RawState(state json.RawMessage) map[string]any {
	if len(state) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(state, &m); err != nil {
		return nil
	}
	return m
}
