// Package agui implements the wire protocol spoken by direct agent servers.
//
// A direct agent server streams newline-delimited JSON events over the
// response body of a generate call. Each line is one Event. The same
// vocabulary (messages, tool calls, tool descriptors) is used for the
// request payload.
package agui

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of protocol event.
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventRunFinished EventType = "run_finished"

	EventTextMessageStart   EventType = "text_message_start"
	EventTextMessageContent EventType = "text_message_content"
	EventTextMessageEnd     EventType = "text_message_end"

	EventActionExecutionStart EventType = "action_execution_start"
	EventActionExecutionArgs  EventType = "action_execution_args"
	EventActionExecutionEnd   EventType = "action_execution_end"

	EventAgentStateMessage EventType = "agent_state_message"
	EventMetaEvent         EventType = "meta_event"
	EventError             EventType = "error"
)

// MetaEventLangGraphInterrupt is the only meta-event name with dedicated
// handling downstream; it carries an opaque interrupt value.
const MetaEventLangGraphInterrupt = "langgraph_interrupt"

// Event is a single parsed protocol event. Fields are populated according
// to Type; unrelated fields are zero.
type Event struct {
	Type EventType `json:"type"`

	// MessageID correlates lifecycle events for one logical message.
	// Action execution events use it for the action execution id.
	MessageID string `json:"message_id,omitempty"`

	// Text message fields.
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"` // one delta, not the accumulated text

	// Action execution fields.
	ActionName string `json:"action_name,omitempty"`
	Args       string `json:"args,omitempty"` // raw partial argument text

	// Agent state fields.
	AgentName string          `json:"agent_name,omitempty"`
	NodeName  string          `json:"node_name,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
	Running   bool            `json:"running,omitempty"`
	Active    bool            `json:"active,omitempty"`

	// Run correlation.
	ThreadID string `json:"thread_id,omitempty"`
	RunID    string `json:"run_id,omitempty"`

	// Meta event fields.
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`

	// Error fields.
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`

	Timestamp time.Time `json:"-"`
}

// ParseEvent parses one raw JSON line into an Event.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	ev.Timestamp = time.Now()
	return &ev, nil
}

// IsTerminal returns true if this event ends the run.
func (e *Event) IsTerminal() bool {
	return e.Type == EventRunFinished || e.Type == EventError
}

// IsError returns true if this event carries a run error.
func (e *Event) IsError() bool {
	return e.Type == EventError
}

// IsLifecycle returns true for run start/finish markers that carry no
// message content of their own.
func (e *Event) IsLifecycle() bool {
	return e.Type == EventRunStarted || e.Type == EventRunFinished
}
