package response

import (
	"github.com/google/uuid"

	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/internal/logging"
	"github.com/drewfead/copilot/pkg/agui"
)

// lifecycle state per logical message id.
type lifecycle int

const (
	lifecycleNone lifecycle = iota
	lifecyclePending
	lifecycleStreaming
	lifecycleSuccess // terminal
	lifecycleError   // terminal
)

// Translator turns raw protocol events into output records, tracking the
// lifecycle of each message id so that statuses never regress after a
// terminal state. One Translator serves one response stream; it is not
// safe for concurrent use and does not need to be (events arrive in order
// from a single read loop).
type Translator struct {
	sourceURL string
	states    map[string]lifecycle
}

// NewTranslator creates a Translator for a stream originating at sourceURL.
// The URL is attached to protocol errors for classification.
func NewTranslator(sourceURL string) *Translator {
	return &Translator{
		sourceURL: sourceURL,
		states:    map[string]lifecycle{},
	}
}

// Translate maps one event to at most one output record.
//
// A nil output with nil error means the event produced nothing to emit
// (run lifecycle markers, events for already-terminal ids, unhandled
// meta-events). Error events short-circuit: they return a typed protocol
// error instead of a status-tagged record.
func (t *Translator) Translate(ev *agui.Event) (*Output, error) {
	switch ev.Type {
	case agui.EventRunStarted, agui.EventRunFinished:
		return nil, nil

	case agui.EventError:
		return nil, errclass.Protocol(t.sourceURL, ev.Message)

	case agui.EventTextMessageStart:
		if t.terminal(ev.MessageID) {
			return nil, nil
		}
		t.states[ev.MessageID] = lifecyclePending
		return &Output{
			Kind:      KindTextMessage,
			MessageID: ev.MessageID,
			Status:    StatusPending,
			Role:      roleOrAssistant(ev.Role),
		}, nil

	case agui.EventTextMessageContent:
		if t.terminal(ev.MessageID) {
			return nil, nil
		}
		t.states[ev.MessageID] = lifecycleStreaming
		return &Output{
			Kind:      KindTextMessage,
			MessageID: ev.MessageID,
			Status:    StatusPending,
			Content:   ev.Content,
		}, nil

	case agui.EventTextMessageEnd:
		if t.terminal(ev.MessageID) {
			return nil, nil
		}
		t.states[ev.MessageID] = lifecycleSuccess
		return &Output{
			Kind:      KindTextMessage,
			MessageID: ev.MessageID,
			Status:    StatusSuccess,
		}, nil

	case agui.EventActionExecutionStart:
		if t.terminal(ev.MessageID) {
			return nil, nil
		}
		t.states[ev.MessageID] = lifecyclePending
		return &Output{
			Kind:       KindActionExecution,
			MessageID:  ev.MessageID,
			Status:     StatusPending,
			ActionName: ev.ActionName,
		}, nil

	case agui.EventActionExecutionArgs:
		if t.terminal(ev.MessageID) {
			return nil, nil
		}
		t.states[ev.MessageID] = lifecycleStreaming
		return &Output{
			Kind:      KindActionExecution,
			MessageID: ev.MessageID,
			Status:    StatusPending,
			Args:      ev.Args,
		}, nil

	case agui.EventActionExecutionEnd:
		if t.terminal(ev.MessageID) {
			return nil, nil
		}
		t.states[ev.MessageID] = lifecycleSuccess
		return &Output{
			Kind:      KindActionExecution,
			MessageID: ev.MessageID,
			Status:    StatusSuccess,
		}, nil

	case agui.EventAgentStateMessage:
		// Snapshots are complete replacements; no lifecycle tracking.
		return &Output{
			Kind:      KindAgentState,
			MessageID: idOrNew(ev.MessageID),
			Status:    StatusSuccess,
			AgentName: ev.AgentName,
			NodeName:  ev.NodeName,
			State:     ev.State,
			Running:   ev.Running,
		}, nil

	case agui.EventMetaEvent:
		if ev.Name != agui.MetaEventLangGraphInterrupt {
			logging.Debug("dropping unhandled meta-event", "name", ev.Name)
			return nil, nil
		}
		return &Output{
			Kind:      KindMetaEvent,
			MessageID: idOrNew(ev.MessageID),
			Status:    StatusSuccess,
			Name:      ev.Name,
			Value:     ev.Value,
		}, nil

	default:
		// Unrecognized event types are synthesized into a completed text
		// output rather than dropped, so nothing disappears silently.
		logging.Debug("synthesizing output for unrecognized event", "type", ev.Type)
		content := ev.Content
		if content == "" {
			content = ev.Message
		}
		return &Output{
			Kind:      KindTextMessage,
			MessageID: idOrNew(ev.MessageID),
			Status:    StatusSuccess,
			Role:      roleOrAssistant(ev.Role),
			Content:   content,
		}, nil
	}
}

func (t *Translator) terminal(id string) bool {
	s := t.states[id]
	return s == lifecycleSuccess || s == lifecycleError
}

func roleOrAssistant(role string) string {
	if role == "" {
		return agui.RoleAssistant
	}
	return role
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
