package response

import (
	"strings"
	"testing"

	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/pkg/agui"
)

func TestTextMessageLifecycle(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	events := []*agui.Event{
		{Type: agui.EventTextMessageStart, MessageID: "m1", Role: "assistant"},
		{Type: agui.EventTextMessageContent, MessageID: "m1", Content: "hel"},
		{Type: agui.EventTextMessageContent, MessageID: "m1", Content: "lo "},
		{Type: agui.EventTextMessageContent, MessageID: "m1", Content: "world"},
		{Type: agui.EventTextMessageEnd, MessageID: "m1"},
	}

	var outs []*Output
	for _, ev := range events {
		out, err := tr.Translate(ev)
		if err != nil {
			t.Fatalf("Translate(%s) failed: %v", ev.Type, err)
		}
		if out == nil {
			t.Fatalf("Translate(%s) produced no output", ev.Type)
		}
		outs = append(outs, out)
	}

	if outs[0].Status != StatusPending {
		t.Errorf("Expected first status PENDING, got %s", outs[0].Status)
	}
	for i := 1; i < 4; i++ {
		if outs[i].Status != StatusPending {
			t.Errorf("Delta %d regressed status to %s", i, outs[i].Status)
		}
	}
	if outs[4].Status != StatusSuccess {
		t.Errorf("Expected terminal SUCCESS, got %s", outs[4].Status)
	}

	var text strings.Builder
	for _, out := range outs {
		text.WriteString(out.Content)
	}
	if text.String() != "hello world" {
		t.Errorf("Concatenated deltas = %q, want %q", text.String(), "hello world")
	}
}

func TestTerminalIDsStayTerminal(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	tr.Translate(&agui.Event{Type: agui.EventTextMessageStart, MessageID: "m1"})
	tr.Translate(&agui.Event{Type: agui.EventTextMessageEnd, MessageID: "m1"})

	// A late start for the same id must never resurrect it to PENDING.
	out, err := tr.Translate(&agui.Event{Type: agui.EventTextMessageStart, MessageID: "m1"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != nil {
		t.Errorf("Expected late event to be ignored, got %+v", out)
	}

	out, _ = tr.Translate(&agui.Event{Type: agui.EventTextMessageContent, MessageID: "m1", Content: "zombie"})
	if out != nil {
		t.Errorf("Expected late delta to be ignored, got %+v", out)
	}
}

func TestActionExecutionLifecycle(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	start, err := tr.Translate(&agui.Event{
		Type: agui.EventActionExecutionStart, MessageID: "a1", ActionName: "get_weather",
	})
	if err != nil || start == nil {
		t.Fatalf("start: out=%v err=%v", start, err)
	}
	if start.Kind != KindActionExecution || start.Status != StatusPending || start.ActionName != "get_weather" {
		t.Errorf("Unexpected start output: %+v", start)
	}

	args, _ := tr.Translate(&agui.Event{
		Type: agui.EventActionExecutionArgs, MessageID: "a1", Args: `{"city":`,
	})
	if args.Args != `{"city":` || args.Status != StatusPending {
		t.Errorf("Unexpected args output: %+v", args)
	}

	end, _ := tr.Translate(&agui.Event{Type: agui.EventActionExecutionEnd, MessageID: "a1"})
	if end.Status != StatusSuccess {
		t.Errorf("Expected SUCCESS, got %s", end.Status)
	}
}

func TestAgentStateSnapshot(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	out, err := tr.Translate(&agui.Event{
		Type:      agui.EventAgentStateMessage,
		AgentName: "planner",
		NodeName:  "plan",
		State:     []byte(`{"step":3}`),
		Running:   true,
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	// Snapshots are immediately SUCCESS; there is no pending phase.
	if out.Kind != KindAgentState || out.Status != StatusSuccess {
		t.Errorf("Unexpected output: %+v", out)
	}
	if out.AgentName != "planner" || !out.Running {
		t.Errorf("Snapshot fields lost: %+v", out)
	}
}

func TestMetaEvents(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	t.Run("LangGraphInterrupt", func(t *testing.T) {
		out, err := tr.Translate(&agui.Event{
			Type:  agui.EventMetaEvent,
			Name:  agui.MetaEventLangGraphInterrupt,
			Value: []byte(`"waiting for approval"`),
		})
		if err != nil || out == nil {
			t.Fatalf("out=%v err=%v", out, err)
		}
		if out.Kind != KindMetaEvent || out.Name != agui.MetaEventLangGraphInterrupt {
			t.Errorf("Unexpected output: %+v", out)
		}
	})

	t.Run("UnknownNameDropped", func(t *testing.T) {
		out, err := tr.Translate(&agui.Event{Type: agui.EventMetaEvent, Name: "custom_ping"})
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		if out != nil {
			t.Errorf("Expected unhandled meta-event to be dropped, got %+v", out)
		}
	})
}

func TestErrorEventShortCircuits(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	out, err := tr.Translate(&agui.Event{Type: agui.EventError, Message: "agent exploded"})
	if out != nil {
		t.Errorf("Error events must not produce outputs, got %+v", out)
	}
	se := errclass.AsStructured(err)
	if se == nil {
		t.Fatalf("Expected structured error, got %v", err)
	}
	if se.Code != errclass.CodeProtocol {
		t.Errorf("Expected PROTOCOL_ERROR, got %s", se.Code)
	}
	if se.URL != "http://agent.local/generate" {
		t.Errorf("Expected originating URL on error, got %q", se.URL)
	}
}

func TestUnrecognizedEventSynthesized(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	out, err := tr.Translate(&agui.Event{
		Type:      agui.EventType("thinking_hard"),
		MessageID: "x1",
		Content:   "hmm",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out == nil {
		t.Fatal("Unrecognized events must synthesize an output, got nil")
	}
	if out.Kind != KindTextMessage || out.Status != StatusSuccess || out.Content != "hmm" {
		t.Errorf("Unexpected synthesized output: %+v", out)
	}
}

func TestRunLifecycleProducesNothing(t *testing.T) {
	tr := NewTranslator("http://agent.local/generate")

	for _, typ := range []agui.EventType{agui.EventRunStarted, agui.EventRunFinished} {
		out, err := tr.Translate(&agui.Event{Type: typ})
		if err != nil || out != nil {
			t.Errorf("%s: out=%v err=%v, want nil/nil", typ, out, err)
		}
	}
}
