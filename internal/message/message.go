// Package message provides the internal conversation model and its
// conversion to and from the agent wire format.
//
// All conversation content is normalized into a single Message type with a
// kind tag and one variant payload, so downstream code dispatches with an
// exhaustive switch instead of chains of type checks.
package message

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a text-bearing message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleTool      Role = "tool"
)

// Kind categorizes the message variant.
type Kind string

const (
	// KindText is plain conversational text.
	KindText Kind = "text"

	// KindActionExecution is a frontend action invoked by the agent.
	KindActionExecution Kind = "action_execution"

	// KindResult is the result of an executed action.
	KindResult Kind = "result"

	// KindAgentState is an agent state snapshot.
	KindAgentState Kind = "agent_state"

	// KindImage is an image payload.
	KindImage Kind = "image"
)

// Message is one unit of conversation. ID is unique within a conversation
// and stable across wire conversion round trips. Exactly one variant
// payload is set, matching Kind; Role is meaningful only for text and
// image messages (the rest are implicitly from the assistant).
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	Text   string       `json:"text,omitempty"`
	Action *ActionCall  `json:"action,omitempty"`
	Result *ActionDone  `json:"result,omitempty"`
	Agent  *AgentUpdate `json:"agent,omitempty"`
	Image  *ImageData   `json:"image,omitempty"`
}

// ActionCall holds an action invocation.
type ActionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-serialized argument object
}

// ActionDone holds the result of an action, referencing the invocation.
type ActionDone struct {
	ActionExecutionID string `json:"action_execution_id"`
	ActionName        string `json:"action_name,omitempty"`
	Value             string `json:"value"`
}

// AgentUpdate holds an agent state snapshot.
type AgentUpdate struct {
	AgentName string          `json:"agent_name"`
	NodeName  string          `json:"node_name,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
	Running   bool            `json:"running,omitempty"`
}

// ImageData holds an image payload.
type ImageData struct {
	Format string `json:"format"` // e.g. "png", "jpeg"
	Bytes  string `json:"bytes"`  // base64-encoded
}

// NewText creates a text message with a generated id.
func NewText(role Role, text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      KindText,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewActionExecution creates an action execution message with a generated id.
func NewActionExecution(name, arguments string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      KindActionExecution,
		Action:    &ActionCall{Name: name, Arguments: arguments},
		CreatedAt: time.Now(),
	}
}

// NewResult creates a result message referencing an action execution.
func NewResult(actionExecutionID, actionName, value string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      KindResult,
		Result:    &ActionDone{ActionExecutionID: actionExecutionID, ActionName: actionName, Value: value},
		CreatedAt: time.Now(),
	}
}

// NewAgentState creates an agent state snapshot message.
func NewAgentState(agentName string, state json.RawMessage, running bool) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      KindAgentState,
		Agent:     &AgentUpdate{AgentName: agentName, State: state, Running: running},
		CreatedAt: time.Now(),
	}
}

// IsTextual returns true for variants where Role is required.
func (m *Message) IsTextual() bool {
	return m.Kind == KindText || m.Kind == KindImage
}

// Action describes a frontend action offered to the agent.
type Action struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Parameter is one named argument of an action.
type Parameter struct {
	Name        string
	Type        string // JSON-schema type; defaults to "string" when empty
	Description string
	Required    bool
}
