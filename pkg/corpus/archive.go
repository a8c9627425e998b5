package corpus

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/pronounce/pkg/audio/mfcc"
)

// Archive format identifiers.
const (
	archiveMagic   = "pronounce/corpus"
	archiveVersion = 1
)

var errBadArchive = errors.New("corpus: bad archive")

// document is the msgpack layout of an archive.
type document struct {
	Magic     string         `msgpack:"magic"`
	Version   int            `msgpack:"version"`
	Params    mfcc.Params    `msgpack:"params"`
	BuildID   string         `msgpack:"build_id"`
	CreatedAt time.Time      `msgpack:"created_at"`
	Entries   []archiveEntry `msgpack:"entries"`
}

// archiveEntry is one reference recording, addressed by its {word}_{index}
// key. Entries are stored sorted by key.
type archiveEntry struct {
	Key      string       `msgpack:"key"`
	Features *mfcc.Matrix `msgpack:"features"`
}

// MarshalBinary encodes the corpus as a zstd-compressed msgpack archive.
// Entries are sorted by key so equal corpora encode to equal bytes.
func (c *Corpus) MarshalBinary() ([]byte, error) {
	doc := document{
		Magic:     archiveMagic,
		Version:   archiveVersion,
		Params:    c.params,
		BuildID:   c.buildID,
		CreatedAt: c.createdAt.UTC(),
		Entries:   make([]archiveEntry, 0, c.n),
	}
	for _, entries := range c.words {
		for _, e := range entries {
			doc.Entries = append(doc.Entries, archiveEntry{Key: e.Key(), Features: e.Features})
		}
	}
	slices.SortFunc(doc.Entries, func(a, b archiveEntry) int {
		return strings.Compare(a.Key, b.Key)
	})

	raw, err := msgpack.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("corpus: encode archive: %w", err)
	}

	zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("corpus: zstd writer: %w", err)
	}
	defer zw.Close()
	return zw.EncodeAll(raw, nil), nil
}

// Unmarshal decodes an archive produced by MarshalBinary.
func Unmarshal(data []byte) (*Corpus, error) {
	zr, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("corpus: zstd reader: %w", err)
	}
	defer zr.Close()
	raw, err := zr.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %w", errBadArchive, err)
	}

	var doc document
	if err := msgpack.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", errBadArchive, err)
	}
	if doc.Magic != archiveMagic {
		return nil, fmt.Errorf("%w: magic %q", errBadArchive, doc.Magic)
	}
	if doc.Version != archiveVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", errBadArchive, doc.Version, archiveVersion)
	}

	entries := make([]Entry, 0, len(doc.Entries))
	for _, ae := range doc.Entries {
		word, index, ok := ParseKey(ae.Key)
		if !ok {
			return nil, fmt.Errorf("%w: malformed key %q", errBadArchive, ae.Key)
		}
		entries = append(entries, Entry{Word: word, Index: index, Features: ae.Features})
	}
	return New(Header{Params: doc.Params, BuildID: doc.BuildID, CreatedAt: doc.CreatedAt}, entries)
}
