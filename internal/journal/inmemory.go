package journal

import (
	"context"
	"sync"
)

// InMemory keeps journal entries in process memory.
type InMemory struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewInMemory creates a concurrency-safe in-memory journal.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (j *InMemory) Record(_ context.Context, entries ...Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entries...)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (j *InMemory) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// ForHandle returns the entries recorded for one account.
func (j *InMemory) ForHandle(handle string) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Entry
	for _, e := range j.entries {
		if e.Handle == handle {
			out = append(out, e)
		}
	}
	return out
}
