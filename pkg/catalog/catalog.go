// Package catalog records how many reference recordings exist for each word.
//
// The corpus builder publishes the counts of every build; the surrounding
// application reads them to decide whether a pronunciation exercise can be
// offered for a word. Counts are not part of the feature archive.
//
// The package includes a BadgerDB-backed implementation for production use
// and an in-memory implementation for testing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/pronounce/pkg/vocab"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a word has no catalog entry.
	ErrNotFound = errors.New("catalog: not found")
)

// Entry is the catalog record of one word.
type Entry struct {
	Word       string    `msgpack:"word" json:"word" yaml:"word"`
	Recordings int       `msgpack:"recordings" json:"recordings" yaml:"recordings"`
	BuildID    string    `msgpack:"build_id" json:"build_id" yaml:"build_id"`
	UpdatedAt  time.Time `msgpack:"updated_at" json:"updated_at" yaml:"updated_at"`
}

// Offerable reports whether the word has at least min recordings.
func (e Entry) Offerable(min int) bool {
	return e.Recordings >= max(min, 1)
}

// Store holds catalog entries keyed by the vocab.Normalize form of the word.
type Store interface {
	// Get returns the entry for word. Returns ErrNotFound if absent.
	Get(ctx context.Context, word string) (Entry, error)

	// Publish replaces the catalog with counts from one corpus build.
	// Words missing from counts are removed.
	Publish(ctx context.Context, buildID string, counts map[string]int) error

	// List iterates over all entries in word order.
	List(ctx context.Context) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

const keyPrefix = "word:"

func encodeKey(word string) []byte {
	return []byte(keyPrefix + vocab.Normalize(word))
}

func encodeEntry(e Entry) ([]byte, error) {
	b, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode %s: %w", e.Word, err)
	}
	return b, nil
}

func decodeEntry(b []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("catalog: decode: %w", err)
	}
	return e, nil
}

// entries builds the normalized entry set for a publish.
func entries(buildID string, counts map[string]int, now time.Time) map[string]Entry {
	out := make(map[string]Entry, len(counts))
	for w, n := range counts {
		w = vocab.Normalize(w)
		if w == "" || n <= 0 {
			continue
		}
		out[w] = Entry{Word: w, Recordings: n, BuildID: buildID, UpdatedAt: now.UTC()}
	}
	return out
}
