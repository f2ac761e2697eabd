// Package response assembles streamed protocol events into status-tagged
// output records and delivers them through a cancellable stream.
package response

import "encoding/json"

// Status reflects the lifecycle stage of the event underlying an output.
// For one message id the observed sequence is monotonic: PENDING, then
// content deltas, then a single terminal SUCCESS or ERROR.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Kind tags the output variant.
type Kind string

const (
	KindTextMessage     Kind = "text_message"
	KindActionExecution Kind = "action_execution"
	KindAgentState      Kind = "agent_state"
	KindMetaEvent       Kind = "meta_event"
)

// Output is one incremental unit of a streamed response.
type Output struct {
	Kind      Kind   `json:"kind"`
	MessageID string `json:"message_id,omitempty"`
	Status    Status `json:"status"`

	// Text message fields. Content is a single delta for streaming
	// increments, never the accumulated text.
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// Action execution fields. Args is a raw partial-argument delta;
	// schema validation is the consumer's concern.
	ActionName string `json:"action_name,omitempty"`
	Args       string `json:"args,omitempty"`

	// Agent state fields. Each snapshot fully replaces the previous one.
	AgentName string          `json:"agent_name,omitempty"`
	NodeName  string          `json:"node_name,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
	Running   bool            `json:"running,omitempty"`

	// Meta event fields.
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}
