// Package corpus holds the reference MFCC features of native-speaker
// recordings, keyed by word.
//
// A corpus is built offline by Build, stored as a single compressed archive,
// and loaded once per process with Load. A loaded corpus is never mutated;
// reloading swaps a whole new corpus into a Holder.
package corpus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/haivivi/pronounce/pkg/audio/mfcc"
	"github.com/haivivi/pronounce/pkg/storage"
	"github.com/haivivi/pronounce/pkg/vocab"
)

// DefaultArchiveName is the archive file name Build writes into the
// destination.
const DefaultArchiveName = "features.corpus"

// ErrCorpusLoad is returned when an archive cannot be read, decoded or
// validated.
var ErrCorpusLoad = errors.New("corpus: load failed")

// minSuggestScore is the Jaro-Winkler similarity below which a known word is
// not offered as a suggestion.
const minSuggestScore = 0.7

// Entry is the feature matrix of one reference recording.
type Entry struct {
	Word     string
	Index    int
	Features *mfcc.Matrix
}

// Key returns the archive key of e.
func (e Entry) Key() string {
	return FormatKey(e.Word, e.Index)
}

// Header describes how and when a corpus was built.
type Header struct {
	Params    mfcc.Params
	BuildID   string
	CreatedAt time.Time
}

// Corpus maps words to their reference entries. It is safe for concurrent
// reads.
type Corpus struct {
	params    mfcc.Params
	buildID   string
	createdAt time.Time
	words     map[string][]Entry
	n         int
}

// New assembles a corpus from entries. Words are normalized, entries of a
// word are ordered by index, and every matrix must have h.Params.Rows()
// rows. A repeated (word, index) pair is an error.
func New(h Header, entries []Entry) (*Corpus, error) {
	if err := h.Params.Validate(); err != nil {
		return nil, err
	}
	c := &Corpus{
		params:    h.Params,
		buildID:   h.BuildID,
		createdAt: h.CreatedAt,
		words:     make(map[string][]Entry),
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		e.Word = vocab.Normalize(e.Word)
		if e.Word == "" || e.Index < 0 {
			return nil, fmt.Errorf("%w: invalid entry %q/%d", errBadArchive, e.Word, e.Index)
		}
		if seen[e.Key()] {
			return nil, fmt.Errorf("%w: duplicate entry %s", errBadArchive, e.Key())
		}
		seen[e.Key()] = true
		if err := e.Features.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key(), err)
		}
		if e.Features.Rows != h.Params.Rows() {
			return nil, fmt.Errorf("%w: %s has %d rows, want %d", errBadArchive, e.Key(), e.Features.Rows, h.Params.Rows())
		}
		c.words[e.Word] = append(c.words[e.Word], e)
	}
	for _, list := range c.words {
		slices.SortFunc(list, func(a, b Entry) int { return cmp.Compare(a.Index, b.Index) })
	}
	c.n = len(entries)
	return c, nil
}

// Load reads and decodes the archive at path. Every failure wraps
// ErrCorpusLoad.
func Load(ctx context.Context, fs storage.FileStore, path string) (*Corpus, error) {
	data, err := storage.ReadFile(ctx, fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorpusLoad, path, err)
	}
	c, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorpusLoad, path, err)
	}
	return c, nil
}

// Save encodes c, writes it to path and returns the archive size in bytes.
func (c *Corpus) Save(ctx context.Context, fs storage.FileStore, path string) (int64, error) {
	data, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if err := storage.WriteFile(ctx, fs, path, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// Lookup returns the entries of word ordered by index. Matching is
// case-insensitive; an unknown word yields an empty slice.
func (c *Corpus) Lookup(word string) []Entry {
	return slices.Clone(c.words[vocab.Normalize(word)])
}

// Words returns all words in sorted order.
func (c *Corpus) Words() []string {
	return slices.Sorted(maps.Keys(c.words))
}

// Counts returns the number of entries per word.
func (c *Corpus) Counts() map[string]int {
	out := make(map[string]int, len(c.words))
	for w, list := range c.words {
		out[w] = len(list)
	}
	return out
}

// Params returns the feature parameters the corpus was built with.
func (c *Corpus) Params() mfcc.Params { return c.params }

// BuildID returns the identifier of the build that produced the corpus.
func (c *Corpus) BuildID() string { return c.buildID }

// CreatedAt returns the build time.
func (c *Corpus) CreatedAt() time.Time { return c.createdAt }

// Len returns the total number of entries.
func (c *Corpus) Len() int { return c.n }

// Suggest returns up to n known words closest to word by Jaro-Winkler
// similarity, best first.
func (c *Corpus) Suggest(word string, n int) []string {
	word = vocab.Normalize(word)
	if word == "" || n <= 0 {
		return nil
	}
	type scored struct {
		word  string
		score float64
	}
	var candidates []scored
	for w := range c.words {
		if s := matchr.JaroWinkler(word, w, false); s >= minSuggestScore {
			candidates = append(candidates, scored{w, s})
		}
	}
	slices.SortFunc(candidates, func(a, b scored) int {
		if d := cmp.Compare(b.score, a.score); d != 0 {
			return d
		}
		return cmp.Compare(a.word, b.word)
	})
	out := make([]string, 0, min(n, len(candidates)))
	for _, s := range candidates[:min(n, len(candidates))] {
		out = append(out, s.word)
	}
	return out
}

// Holder publishes the current corpus to concurrent readers.
type Holder struct {
	p atomic.Pointer[Corpus]
}

// NewHolder returns a Holder serving c.
func NewHolder(c *Corpus) *Holder {
	h := &Holder{}
	h.p.Store(c)
	return h
}

// Get returns the current corpus.
func (h *Holder) Get() *Corpus {
	return h.p.Load()
}

// Swap replaces the current corpus and returns the previous one.
func (h *Holder) Swap(c *Corpus) *Corpus {
	return h.p.Swap(c)
}

// Reload loads the archive at path and swaps it in. On failure the current
// corpus keeps serving.
func (h *Holder) Reload(ctx context.Context, fs storage.FileStore, path string) error {
	c, err := Load(ctx, fs, path)
	if err != nil {
		return err
	}
	h.Swap(c)
	return nil
}
