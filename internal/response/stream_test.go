package response

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/drewfead/copilot/internal/errclass"
)

func TestStreamDeliversInOrder(t *testing.T) {
	s := NewStream(nil)

	go func() {
		for _, c := range []string{"a", "b", "c"} {
			s.Push(Output{Kind: KindTextMessage, MessageID: "m", Content: c, Status: StatusPending})
		}
		s.Complete()
	}()

	outs, err := Collect(context.Background(), s)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(outs) != 3 {
		t.Fatalf("Expected 3 outputs, got %d", len(outs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if outs[i].Content != want {
			t.Errorf("Output %d = %q, want %q", i, outs[i].Content, want)
		}
	}
}

func TestStreamFailClassifies(t *testing.T) {
	s := NewStream(nil)
	s.Fail(errors.New("dial tcp 127.0.0.1:9999: connection refused"))

	if _, ok := <-s.Outputs(); ok {
		t.Fatal("Expected outputs channel closed after Fail")
	}
	se := errclass.AsStructured(s.Err())
	if se == nil {
		t.Fatalf("Expected structured error, got %v", s.Err())
	}
	if se.Code != errclass.CodeRemoteEndpointNotFound {
		t.Errorf("Expected REMOTE_ENDPOINT_NOT_FOUND, got %s", se.Code)
	}
}

func TestStreamSwallowsAbortErrors(t *testing.T) {
	s := NewStream(nil)
	s.Fail(context.Canceled)

	if err := s.Err(); err != nil {
		t.Errorf("Abort errors must complete the stream cleanly, got %v", err)
	}
}

func TestStreamCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(cancel)

	s.Cancel()

	if ctx.Err() == nil {
		t.Error("Cancel must abort the underlying context")
	}
	if s.Push(Output{Content: "late"}) {
		t.Error("Push after Cancel must be rejected")
	}
	// Errors the producer surfaces after cancellation are suppressed.
	s.Fail(errors.New("read on closed response body"))
	if err := s.Err(); err != nil {
		t.Errorf("Post-cancel errors must be suppressed, got %v", err)
	}

	// Calling Cancel again must be harmless.
	s.Cancel()
}

func TestStreamCancelUnblocksProducer(t *testing.T) {
	s := NewStream(nil)

	// Fill the buffer with no consumer attached.
	produced := make(chan struct{})
	go func() {
		defer close(produced)
		for s.Push(Output{Content: "x"}) {
		}
	}()

	time.Sleep(10 * time.Millisecond)
	s.Cancel()

	select {
	case <-produced:
	case <-time.After(time.Second):
		t.Fatal("Producer still blocked after Cancel")
	}
}

func TestSubscribeCompletesExactlyOnce(t *testing.T) {
	s := NewStream(nil)

	var mu sync.Mutex
	var got []string
	completes := 0
	done := make(chan struct{})

	s.Subscribe(
		func(out Output) {
			mu.Lock()
			got = append(got, out.Content)
			mu.Unlock()
		},
		func(err error) { t.Errorf("Unexpected onError: %v", err) },
		func() {
			mu.Lock()
			completes++
			mu.Unlock()
			close(done)
		},
	)

	s.Push(Output{Content: "one"})
	s.Push(Output{Content: "two"})
	s.Complete()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onComplete never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if completes != 1 {
		t.Errorf("onComplete fired %d times, want 1", completes)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Unexpected outputs: %v", got)
	}
}

func TestSubscribeCancelDropsBuffered(t *testing.T) {
	s := NewStream(nil)

	// Several records are already buffered before the consumer attaches.
	for _, c := range []string{"one", "two", "three"} {
		if !s.Push(Output{Kind: KindTextMessage, Content: c, Status: StatusPending}) {
			t.Fatalf("Push(%q) rejected", c)
		}
	}
	s.Complete()

	var mu sync.Mutex
	var got []string
	completes := 0
	errs := 0
	done := make(chan struct{})

	s.Subscribe(
		func(out Output) {
			mu.Lock()
			got = append(got, out.Content)
			mu.Unlock()
			s.Cancel()
		},
		func(error) {
			mu.Lock()
			errs++
			mu.Unlock()
		},
		func() {
			mu.Lock()
			completes++
			mu.Unlock()
			close(done)
		},
	)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onComplete never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "one" {
		t.Errorf("onNext must stop at cancellation, delivered %v", got)
	}
	if errs != 0 {
		t.Errorf("onError fired %d times after cancellation, want 0", errs)
	}
	if completes != 1 {
		t.Errorf("onComplete fired %d times, want 1", completes)
	}
}

func TestSubscribeErrorPath(t *testing.T) {
	s := NewStream(nil)

	errCh := make(chan error, 1)
	s.Subscribe(
		nil,
		func(err error) { errCh <- err },
		func() { t.Error("onComplete must not fire on failure") },
	)

	s.Fail(errors.New("status 502 from upstream"))

	select {
	case err := <-errCh:
		if errclass.AsStructured(err) == nil {
			t.Errorf("Expected classified error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("onError never fired")
	}
}

func TestUnsubscribeStopsCallbacks(t *testing.T) {
	s := NewStream(nil)

	unsubscribe := s.Subscribe(
		func(Output) { t.Error("onNext after unsubscribe") },
		func(error) { t.Error("onError after unsubscribe") },
		func() { t.Error("onComplete after unsubscribe") },
	)

	unsubscribe()

	if !s.Canceled() {
		t.Error("Unsubscribe must cancel the stream")
	}
	s.Complete()
	time.Sleep(20 * time.Millisecond)
}
