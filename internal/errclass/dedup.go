package errclass

import (
	"sync"
	"time"
)

// DefaultDedupWindow is how long an identical error message is suppressed
// after being surfaced. It exists purely to stop a backend that fails every
// chunk of a stream from flooding the error surface.
const DefaultDedupWindow = 150 * time.Millisecond

// Deduper suppresses identical error messages arriving within a short
// window. Each suppressed arrival refreshes the window, so an uninterrupted
// run of the same message stays suppressed until it pauses; a sliding
// window serves the anti-flooding purpose better than re-surfacing the
// message on a fixed cadence. One Deduper is scoped to one client
// instance's lifetime; state is never persisted or shared between clients.
type Deduper struct {
	mu     sync.Mutex
	window time.Duration
	last   string
	lastAt time.Time

	now func() time.Time // injectable for tests
}

// NewDeduper creates a Deduper with the default window.
func NewDeduper() *Deduper {
	return &Deduper{window: DefaultDedupWindow, now: time.Now}
}

// ShouldReport records msg as the most recently seen error message and
// reports whether it should be surfaced. A message identical to the
// previous one arriving within the window is suppressed.
func (d *Deduper) ShouldReport(msg string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if msg == d.last && now.Sub(d.lastAt) < d.window {
		d.lastAt = now
		return false
	}

	d.last = msg
	d.lastAt = now
	return true
}
