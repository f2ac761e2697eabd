package response

import (
	"context"
	"sync"

	"github.com/drewfead/copilot/internal/errclass"
)

// Stream delivers output records from one generate invocation in arrival
// order. It is produced by exactly one transport goroutine (Push, Fail,
// Complete) and consumed either by ranging over Outputs or through
// Subscribe.
//
// Cancellation is cooperative: Cancel aborts the underlying network
// operation and guarantees that no further records are delivered and that
// the stream finishes cleanly (Err returns nil), exactly once.
type Stream struct {
	outputs chan Output
	done    chan struct{} // closed on Cancel
	cancel  context.CancelFunc

	mu       sync.Mutex
	closed   bool
	canceled bool
	err      error
}

// NewStream creates a Stream whose Cancel aborts the given context.
// cancel may be nil for pre-resolved streams.
func NewStream(cancel context.CancelFunc) *Stream {
	return &Stream{
		outputs: make(chan Output, 64),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
}

// Outputs returns the record channel. It closes when the stream completes,
// fails, or is cancelled; check Err afterwards.
func (s *Stream) Outputs() <-chan Output {
	return s.outputs
}

// Err returns the classified terminal error, or nil after clean completion
// or cancellation. Valid once Outputs is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel aborts the stream. Safe to call from any goroutine and more than
// once. The producer observes the aborted context and completes the
// stream; no new records are accepted, and Subscribe stops delivering
// buffered ones.
func (s *Stream) Cancel() {
	s.mu.Lock()
	first := !s.canceled
	s.canceled = true
	s.mu.Unlock()
	if first {
		close(s.done)
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Canceled reports whether Cancel has been called.
func (s *Stream) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// Push delivers one record. Producer-side; returns false once the stream
// is closed or cancelled, signalling the producer to stop.
func (s *Stream) Push(out Output) bool {
	s.mu.Lock()
	if s.closed || s.canceled {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	select {
	case s.outputs <- out:
		return true
	case <-s.done:
		return false
	}
}

// Complete finishes the stream cleanly. Producer-side, at most once
// between Complete and Fail.
func (s *Stream) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.outputs)
}

// Fail finishes the stream with an error. Abort-induced errors, and any
// error arriving after cancellation, are swallowed: the stream then
// completes cleanly instead.
func (s *Stream) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil && !s.canceled && !errclass.IsAbort(err) {
		s.err = errclass.Classify(err)
	}
	s.closed = true
	close(s.outputs)
}

// Subscribe registers callbacks and returns an unsubscribe handle.
// onComplete fires exactly once for clean completion or cancellation;
// onError fires instead when the stream failed. Once cancellation is
// observed no further onNext or onError fires: records still buffered at
// that point are drained and dropped, and the terminal callback is
// onComplete. After unsubscribing no further callbacks fire and the
// stream is cancelled.
func (s *Stream) Subscribe(onNext func(Output), onError func(error), onComplete func()) (unsubscribe func()) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for out := range s.outputs {
			select {
			case <-done:
				return
			default:
			}
			if s.Canceled() {
				continue
			}
			if onNext != nil {
				onNext(out)
			}
		}
		select {
		case <-done:
			return
		default:
		}
		if err := s.Err(); err != nil && !s.Canceled() {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onComplete != nil {
			onComplete()
		}
	}()

	return func() {
		once.Do(func() {
			close(done)
			s.Cancel()
		})
	}
}

// Collect drains the stream into a slice, honoring ctx. Used by callers
// that want the non-incremental view.
func Collect(ctx context.Context, s *Stream) ([]Output, error) {
	var outs []Output
	for {
		select {
		case <-ctx.Done():
			s.Cancel()
			return outs, nil
		case out, ok := <-s.outputs:
			if !ok {
				return outs, s.Err()
			}
			outs = append(outs, out)
		}
	}
}
