package catalog

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/haivivi/pronounce/pkg/vocab"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// primarily for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string]Entry
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]Entry)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, word string) (Entry, error) {
	m.mu.RLock()
	e, ok := m.data[vocab.Normalize(word)]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Publish implements Store.
func (m *Memory) Publish(_ context.Context, buildID string, counts map[string]int) error {
	next := entries(buildID, counts, time.Now())
	m.mu.Lock()
	m.data = next
	m.mu.Unlock()
	return nil
}

// List implements Store.
func (m *Memory) List(_ context.Context) iter.Seq2[Entry, error] {
	m.mu.RLock()
	snapshot := make([]Entry, 0, len(m.data))
	for _, e := range m.data {
		snapshot = append(snapshot, e)
	}
	m.mu.RUnlock()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Word < snapshot[j].Word })

	return func(yield func(Entry, error) bool) {
		for _, e := range snapshot {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
