package eventlog

import (
	"context"
	"sync"
	"time"
)

// MemoryJournal implements Journal with in-memory storage. Used in tests
// and when the on-disk journal is disabled but a debug view still wants
// replay within the process lifetime.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[string][]*Entry // threadID -> entries
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string][]*Entry)}
}

func (j *MemoryJournal) Append(ctx context.Context, e *Entry) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries := j.entries[e.ThreadID]
	e.Seq = int64(len(entries))
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	j.entries[e.ThreadID] = append(entries, e)
	return e.Seq, nil
}

func (j *MemoryJournal) Read(ctx context.Context, threadID string, fromSeq int64, limit int) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entries := j.entries[threadID]
	if fromSeq >= int64(len(entries)) {
		return nil, nil
	}

	end := int(fromSeq) + limit
	if limit <= 0 || end > len(entries) {
		end = len(entries)
	}

	return entries[fromSeq:end], nil
}

func (j *MemoryJournal) LastSequence(ctx context.Context, threadID string) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return int64(len(j.entries[threadID]) - 1), nil
}

func (j *MemoryJournal) Close() error {
	return nil
}
