package client

import (
	"encoding/json"

	"github.com/drewfead/copilot/internal/message"
	"github.com/drewfead/copilot/pkg/agui"
)

// Agent describes one agent a backend can route to.
type Agent struct {
	Name        string `json:"name"`
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
}

// AgentState is a thread's persisted agent state as reported by the backend.
type AgentState struct {
	ThreadID     string          `json:"threadId"`
	ThreadExists bool            `json:"threadExists"`
	State        json.RawMessage `json:"state,omitempty"`
	Messages     []agui.Message  `json:"messages,omitempty"`
}

// GenerateRequest is one generate invocation. Messages and actions are in
// the internal representation; conversion to the wire format happens inside
// the client.
type GenerateRequest struct {
	AgentName  string
	ThreadID   string
	RunID      string
	Messages   []*message.Message
	Actions    []message.Action
	State      json.RawMessage
	Properties map[string]any
}

// generateData is the request-field block shared by both backends.
type generateData struct {
	ThreadID  string          `json:"threadId"`
	RunID     string          `json:"runId,omitempty"`
	AgentName string          `json:"agentName,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
	Messages  []agui.Message  `json:"messages"`
	Actions   []agui.Tool     `json:"actions,omitempty"`
}

// generateEnvelope is the direct-agent generate body.
type generateEnvelope struct {
	Data       generateData   `json:"data"`
	Properties map[string]any `json:"properties,omitempty"`
}

// agentStateRequest is the direct-agent state-loading body.
type agentStateRequest struct {
	ThreadID  string `json:"threadId"`
	AgentName string `json:"agentName"`
}

// agentsResponse is the direct-agent listing body.
type agentsResponse struct {
	Agents []Agent `json:"agents"`
}
