// Package eventlog journals raw protocol events for debugging and replay.
//
// Every event a client reads off the wire can be appended here before
// translation, keyed by thread. The journal is append-only; a pub/sub bus
// fans entries out to live observers such as the TUI's debug view.
package eventlog

import (
	"context"
	"sync"
	"time"

	"github.com/drewfead/copilot/pkg/agui"
)

// Entry is one journaled protocol event.
type Entry struct {
	Seq       int64          `json:"seq"`
	ThreadID  string         `json:"thread_id"`
	AgentName string         `json:"agent_name,omitempty"`
	Type      agui.EventType `json:"type"`
	Payload   []byte         `json:"payload"` // raw wire bytes, verbatim
	Timestamp time.Time      `json:"timestamp"`
}

// Journal is the append-only event store.
type Journal interface {
	// Append adds an entry and returns its assigned sequence number.
	// Seq and Timestamp on the entry are set by the journal.
	Append(ctx context.Context, e *Entry) (int64, error)

	// Read retrieves entries for a thread from a starting sequence.
	Read(ctx context.Context, threadID string, fromSeq int64, limit int) ([]*Entry, error)

	// LastSequence returns the last sequence number for a thread, or -1.
	LastSequence(ctx context.Context, threadID string) (int64, error)

	Close() error
}

// Subscriber receives journaled entries from the bus.
type Subscriber interface {
	// OnEntry is called for each entry. Should be non-blocking.
	OnEntry(e *Entry)

	// OnError is called when an error occurs.
	OnError(err error)
}

// Bus fans journal entries out to subscribers.
type Bus struct {
	mu         sync.RWMutex
	byThread   map[string][]Subscriber
	globalSubs []Subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{byThread: make(map[string][]Subscriber)}
}

// Publish sends an entry to the thread's subscribers and all global ones.
func (b *Bus) Publish(e *Entry) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.byThread[e.ThreadID] {
		go sub.OnEntry(e)
	}
	for _, sub := range b.globalSubs {
		go sub.OnEntry(e)
	}
}

// Subscribe registers a subscriber for one thread's entries.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(threadID string, sub Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.byThread[threadID] = append(b.byThread[threadID], sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.byThread[threadID]
		for i, s := range subs {
			if s == sub {
				b.byThread[threadID] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers a subscriber for every thread's entries.
func (b *Bus) SubscribeAll(sub Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.globalSubs = append(b.globalSubs, sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.globalSubs {
			if s == sub {
				b.globalSubs = append(b.globalSubs[:i], b.globalSubs[i+1:]...)
				return
			}
		}
	}
}

// Recorder couples a journal with a bus so a client read loop has a single
// sink. A nil Recorder is valid and records nothing.
type Recorder struct {
	journal Journal
	bus     *Bus
}

// NewRecorder creates a Recorder. journal may be nil for bus-only fanout.
func NewRecorder(journal Journal, bus *Bus) *Recorder {
	return &Recorder{journal: journal, bus: bus}
}

// Record journals the event and publishes it. Journal failures are returned
// but the publish still happens; observers should not miss live traffic
// because the disk is unhappy.
func (r *Recorder) Record(ctx context.Context, threadID, agentName string, ev *agui.Event, raw []byte) error {
	if r == nil {
		return nil
	}

	e := &Entry{
		ThreadID:  threadID,
		AgentName: agentName,
		Type:      ev.Type,
		Payload:   raw,
	}

	var err error
	if r.journal != nil {
		_, err = r.journal.Append(ctx, e)
	} else {
		e.Timestamp = time.Now()
	}
	if r.bus != nil {
		r.bus.Publish(e)
	}
	return err
}

// ChannelSubscriber adapts channels to the Subscriber interface.
type ChannelSubscriber struct {
	entries chan *Entry
	errors  chan error
}

// NewChannelSubscriber creates a subscriber that sends to channels.
func NewChannelSubscriber(bufSize int) *ChannelSubscriber {
	return &ChannelSubscriber{
		entries: make(chan *Entry, bufSize),
		errors:  make(chan error, bufSize),
	}
}

func (s *ChannelSubscriber) OnEntry(e *Entry) {
	select {
	case s.entries <- e:
	default:
		// Buffer full, drop entry.
	}
}

func (s *ChannelSubscriber) OnError(err error) {
	select {
	case s.errors <- err:
	default:
	}
}

// Entries returns the entry channel.
func (s *ChannelSubscriber) Entries() <-chan *Entry {
	return s.entries
}

// Errors returns the error channel.
func (s *ChannelSubscriber) Errors() <-chan error {
	return s.errors
}
