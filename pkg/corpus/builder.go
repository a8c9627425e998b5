package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/pronounce/pkg/audio/decode"
	"github.com/haivivi/pronounce/pkg/audio/mfcc"
	"github.com/haivivi/pronounce/pkg/audio/trim"
	"github.com/haivivi/pronounce/pkg/catalog"
	"github.com/haivivi/pronounce/pkg/storage"
	"github.com/haivivi/pronounce/pkg/vocab"
)

// AudioExtensions lists the recording file extensions Build picks up.
var AudioExtensions = []string{".ogg", ".opus", ".wav", ".mp3", ".webm"}

// BuildOptions configures Build.
type BuildOptions struct {
	// Source holds one subdirectory per speaker, each containing recordings
	// named after their word ("cat.ogg"). Required.
	Source fs.FS

	// Dest receives the renamed recordings and the archive. Required.
	Dest storage.FileStore

	// Decoder decodes recordings. Default is decode.New with no external
	// fallback.
	Decoder *decode.Decoder

	// Extractor computes features. Default uses mfcc.DefaultParams.
	Extractor *mfcc.Extractor

	// Trim configures silence trimming before extraction.
	Trim trim.Options

	// Catalog, if set, receives the per-word counts after the archive is
	// written.
	Catalog catalog.Store

	// Workers limits how many speaker directories are processed at once.
	// Default is GOMAXPROCS.
	Workers int

	// ArchiveName is the archive path inside Dest. Default is
	// DefaultArchiveName.
	ArchiveName string

	// BuildID identifies the build. Default is a random UUID.
	BuildID string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Skipped is a recording that was left out of the corpus.
type Skipped struct {
	Path  string `yaml:"path" json:"path"`
	Error string `yaml:"error" json:"error"`
}

// Report summarizes a build.
type Report struct {
	BuildID      string         `yaml:"build_id" json:"build_id"`
	Archive      string         `yaml:"archive" json:"archive"`
	ArchiveBytes int64          `yaml:"archive_bytes" json:"archive_bytes"`
	Params       mfcc.Params    `yaml:"params" json:"params"`
	Entries      int            `yaml:"entries" json:"entries"`
	Counts       map[string]int `yaml:"counts" json:"counts"`
	Skipped      []Skipped      `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Duration     time.Duration  `yaml:"duration" json:"duration"`
}

// recording is the outcome of processing one source file.
type recording struct {
	path     string
	word     string
	ext      string
	features *mfcc.Matrix
	err      error
}

// Build turns a tree of speaker recordings into a corpus.
//
// Speaker directories are processed concurrently. Once all are done, a
// single pass in sorted directory and file order assigns indices per word
// starting at 0, copies each recording to "{word}{index}{ext}" in Dest and
// writes the archive. Rebuilding an unchanged tree reproduces the same
// indices. Recordings that fail to decode or are too short are skipped and
// listed in the report.
func Build(ctx context.Context, opts BuildOptions) (*Report, error) {
	if opts.Source == nil || opts.Dest == nil {
		return nil, errors.New("corpus: build needs a source and a destination")
	}
	start := time.Now()
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	log := opts.Logger.With("build_id", opts.BuildID)

	dirs, err := speakerDirs(opts.Source)
	if err != nil {
		return nil, err
	}
	log.Info("building corpus", "speakers", len(dirs), "workers", opts.Workers)

	results := make([][]recording, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, dir := range dirs {
		g.Go(func() error {
			recs, err := processDir(gctx, opts, dir)
			results[i] = recs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		BuildID: opts.BuildID,
		Archive: opts.ArchiveName,
		Params:  opts.Extractor.Params(),
		Counts:  make(map[string]int),
	}
	var entries []Entry
	for _, recs := range results {
		for _, rec := range recs {
			if rec.err != nil {
				log.Warn("skipping recording", "path", rec.path, "error", rec.err)
				report.Skipped = append(report.Skipped, Skipped{Path: rec.path, Error: rec.err.Error()})
				continue
			}
			index := report.Counts[rec.word]
			if err := copyRecording(ctx, opts, rec, index); err != nil {
				return nil, err
			}
			report.Counts[rec.word]++
			entries = append(entries, Entry{Word: rec.word, Index: index, Features: rec.features})
		}
	}

	c, err := New(Header{Params: report.Params, BuildID: opts.BuildID, CreatedAt: start.UTC()}, entries)
	if err != nil {
		return nil, err
	}
	if report.ArchiveBytes, err = c.Save(ctx, opts.Dest, opts.ArchiveName); err != nil {
		return nil, err
	}
	report.Entries = c.Len()

	if opts.Catalog != nil {
		if err := opts.Catalog.Publish(ctx, opts.BuildID, report.Counts); err != nil {
			return nil, fmt.Errorf("corpus: publish catalog: %w", err)
		}
	}
	report.Duration = time.Since(start)
	log.Info("corpus built", "words", len(report.Counts), "entries", report.Entries,
		"skipped", len(report.Skipped), "duration", report.Duration)
	return report, nil
}

func (o BuildOptions) withDefaults() (BuildOptions, error) {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Extractor == nil {
		ext, err := mfcc.New(mfcc.DefaultParams())
		if err != nil {
			return o, err
		}
		o.Extractor = ext
	}
	if o.Decoder == nil {
		o.Decoder = decode.New(decode.Options{
			SampleRate: o.Extractor.Params().SampleRate,
			Logger:     o.Logger,
		})
	}
	if o.Decoder.SampleRate() != o.Extractor.Params().SampleRate {
		return o, fmt.Errorf("corpus: decoder rate %d does not match feature rate %d",
			o.Decoder.SampleRate(), o.Extractor.Params().SampleRate)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ArchiveName == "" {
		o.ArchiveName = DefaultArchiveName
	}
	if o.BuildID == "" {
		o.BuildID = uuid.NewString()
	}
	return o, nil
}

// speakerDirs returns the top-level directories of src in sorted order.
func speakerDirs(src fs.FS) ([]string, error) {
	list, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("corpus: read source: %w", err)
	}
	var dirs []string
	for _, e := range list {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// processDir extracts features for every recording in dir, in file name
// order. Only context cancellation and directory read errors are fatal.
func processDir(ctx context.Context, opts BuildOptions, dir string) ([]recording, error) {
	list, err := fs.ReadDir(opts.Source, dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", dir, err)
	}
	var recs []recording
	for _, e := range list {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(e.Name()))
		if !slices.Contains(AudioExtensions, ext) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := recording{
			path: path.Join(dir, e.Name()),
			word: vocab.Normalize(strings.TrimSuffix(e.Name(), path.Ext(e.Name()))),
			ext:  ext,
		}
		if rec.word == "" {
			rec.err = errors.New("file name has no word")
		} else {
			rec.features, rec.err = extract(ctx, opts, rec.path, ext)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	opts.Logger.Debug("speaker processed", "dir", dir, "recordings", len(recs))
	return recs, nil
}

func extract(ctx context.Context, opts BuildOptions, name, ext string) (*mfcc.Matrix, error) {
	data, err := fs.ReadFile(opts.Source, name)
	if err != nil {
		return nil, err
	}
	buf, err := opts.Decoder.Decode(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	return opts.Extractor.Extract(trim.Trim(buf, opts.Trim))
}

func copyRecording(ctx context.Context, opts BuildOptions, rec recording, index int) error {
	src, err := opts.Source.Open(rec.path)
	if err != nil {
		return fmt.Errorf("corpus: open %s: %w", rec.path, err)
	}
	defer src.Close()
	return storage.Copy(ctx, opts.Dest, rec.word+strconv.Itoa(index)+rec.ext, src)
}
