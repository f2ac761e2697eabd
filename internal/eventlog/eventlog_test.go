package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/drewfead/copilot/pkg/agui"
)

func TestMemoryJournalAppendRead(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()

	for i, typ := range []agui.EventType{agui.EventRunStarted, agui.EventTextMessageStart, agui.EventTextMessageEnd} {
		seq, err := j.Append(ctx, &Entry{ThreadID: "t1", Type: typ})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if seq != int64(i) {
			t.Errorf("Append returned seq %d, want %d", seq, i)
		}
	}

	entries, err := j.Read(ctx, "t1", 1, 10)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries from seq 1, got %d", len(entries))
	}
	if entries[0].Type != agui.EventTextMessageStart {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}

	last, err := j.LastSequence(ctx, "t1")
	if err != nil || last != 2 {
		t.Errorf("LastSequence = %d, %v, want 2, nil", last, err)
	}

	last, _ = j.LastSequence(ctx, "missing")
	if last != -1 {
		t.Errorf("LastSequence for unknown thread = %d, want -1", last)
	}
}

func TestMemoryJournalThreadsIsolated(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()

	j.Append(ctx, &Entry{ThreadID: "a", Type: agui.EventRunStarted})
	j.Append(ctx, &Entry{ThreadID: "b", Type: agui.EventRunStarted})

	entries, _ := j.Read(ctx, "a", 0, 0)
	if len(entries) != 1 {
		t.Errorf("Thread a has %d entries, want 1", len(entries))
	}
}

func TestBusSubscribe(t *testing.T) {
	bus := NewBus()
	sub := NewChannelSubscriber(4)
	unsubscribe := bus.Subscribe("t1", sub)

	bus.Publish(&Entry{ThreadID: "t1", Type: agui.EventRunStarted})
	bus.Publish(&Entry{ThreadID: "other", Type: agui.EventRunStarted})

	select {
	case e := <-sub.Entries():
		if e.ThreadID != "t1" {
			t.Errorf("Received entry for wrong thread: %s", e.ThreadID)
		}
	case <-time.After(time.Second):
		t.Fatal("Subscriber never received the entry")
	}

	select {
	case e := <-sub.Entries():
		t.Errorf("Received entry not meant for this thread: %+v", e)
	case <-time.After(20 * time.Millisecond):
	}

	unsubscribe()
	bus.Publish(&Entry{ThreadID: "t1", Type: agui.EventRunFinished})
	select {
	case e := <-sub.Entries():
		t.Errorf("Received entry after unsubscribe: %+v", e)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRecorder(t *testing.T) {
	j := NewMemoryJournal()
	bus := NewBus()
	sub := NewChannelSubscriber(4)
	bus.SubscribeAll(sub)

	rec := NewRecorder(j, bus)
	raw := []byte(`{"event":"text_message_start","messageId":"m1"}`)
	err := rec.Record(context.Background(), "t1", "planner", &agui.Event{Type: agui.EventTextMessageStart}, raw)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, _ := j.Read(context.Background(), "t1", 0, 0)
	if len(entries) != 1 || string(entries[0].Payload) != string(raw) {
		t.Errorf("Journal did not capture raw payload: %+v", entries)
	}
	if entries[0].AgentName != "planner" {
		t.Errorf("Agent name lost: %+v", entries[0])
	}

	select {
	case <-sub.Entries():
	case <-time.After(time.Second):
		t.Fatal("Bus never delivered the recorded entry")
	}
}

func TestNilRecorderIsInert(t *testing.T) {
	var rec *Recorder
	if err := rec.Record(context.Background(), "t1", "", &agui.Event{Type: agui.EventRunStarted}, nil); err != nil {
		t.Errorf("Nil recorder must be a no-op, got %v", err)
	}
}
