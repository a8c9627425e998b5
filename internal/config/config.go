// Package config loads the YAML configuration of the pronounce tools and
// maps it onto package options.
//
// Example:
//
//	audio:
//	  sample_rate: 16000
//	  trim_top_db: 20
//	  vad_mode: 3
//	  vad_frame: 30ms
//	  ffmpeg:
//	    path: ffmpeg
//	    timeout: 5s
//	    max_concurrent: 4
//	scoring:
//	  aggregation: min
//	  thresholds: {A: 130, B: 120, C: 110}
//	  points: {pass: 3, fail: 0}
//	corpus:
//	  archive: features.corpus
//	  storage:
//	    backend: s3
//	    bucket: pronounce-corpora
//	catalog:
//	  dir: /var/lib/pronounce/catalog
//
// Every field is optional; missing fields keep their defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/pronounce/pkg/audio/decode"
	"github.com/haivivi/pronounce/pkg/audio/mfcc"
	"github.com/haivivi/pronounce/pkg/audio/trim"
	"github.com/haivivi/pronounce/pkg/audio/vad"
	"github.com/haivivi/pronounce/pkg/catalog"
	"github.com/haivivi/pronounce/pkg/corpus"
	"github.com/haivivi/pronounce/pkg/pronounce"
	"github.com/haivivi/pronounce/pkg/storage"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the root configuration.
type Config struct {
	Audio    Audio       `yaml:"audio"`
	Features mfcc.Params `yaml:"features"`
	Scoring  Scoring     `yaml:"scoring"`
	Corpus   Corpus      `yaml:"corpus"`
	Catalog  Catalog     `yaml:"catalog"`
	Build    Build       `yaml:"build"`
}

// Audio configures decoding and the front end of the pipeline.
type Audio struct {
	SampleRate int           `yaml:"sample_rate"`
	TrimTopDB  float64       `yaml:"trim_top_db"`
	VADMode    int           `yaml:"vad_mode"`
	VADFrame   time.Duration `yaml:"vad_frame"`
	FFmpeg     FFmpeg        `yaml:"ffmpeg"`
}

// FFmpeg configures the external transcoder fallback.
type FFmpeg struct {
	Disabled      bool          `yaml:"disabled"`
	Path          string        `yaml:"path"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// Scoring configures aggregation and grading.
type Scoring struct {
	Aggregation string             `yaml:"aggregation"`
	Thresholds  map[string]float64 `yaml:"thresholds"`
	Points      pronounce.Points   `yaml:"points"`
}

// Corpus locates the feature archive.
type Corpus struct {
	Archive string         `yaml:"archive"`
	Storage storage.Config `yaml:"storage"`
}

// Catalog locates the word catalog store.
type Catalog struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

// Build configures corpus builds.
type Build struct {
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	th := pronounce.DefaultThresholds()
	return &Config{
		Audio: Audio{
			SampleRate: mfcc.DefaultParams().SampleRate,
			TrimTopDB:  trim.DefaultTopDB,
			VADMode:    vad.DefaultMode,
			VADFrame:   vad.DefaultFrameDuration,
			FFmpeg: FFmpeg{
				Path:          decode.DefaultFFmpegPath,
				Timeout:       decode.DefaultTimeout,
				MaxConcurrent: decode.DefaultMaxConcurrent,
			},
		},
		Features: mfcc.DefaultParams(),
		Scoring: Scoring{
			Aggregation: string(pronounce.AggregateMin),
			Thresholds: map[string]float64{
				string(pronounce.TierA): th[pronounce.TierA],
				string(pronounce.TierB): th[pronounce.TierB],
				string(pronounce.TierC): th[pronounce.TierC],
			},
			Points: pronounce.DefaultPoints(),
		},
		Corpus: Corpus{
			Archive: corpus.DefaultArchiveName,
			Storage: storage.Config{Backend: storage.BackendLocal},
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Scoring.Thresholds = mergeThresholds(Default().Scoring.Thresholds, cfg.Scoring.Thresholds)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("%w: features: %w", ErrInvalid, err)
	}
	if c.Audio.SampleRate != c.Features.SampleRate {
		return fmt.Errorf("%w: audio.sample_rate %d differs from features.sample_rate %d",
			ErrInvalid, c.Audio.SampleRate, c.Features.SampleRate)
	}
	if c.Audio.TrimTopDB <= 0 {
		return fmt.Errorf("%w: audio.trim_top_db must be positive", ErrInvalid)
	}
	if c.Audio.VADMode < 0 || c.Audio.VADMode > 3 {
		return fmt.Errorf("%w: audio.vad_mode %d not in 0..3", ErrInvalid, c.Audio.VADMode)
	}
	switch c.Audio.VADFrame {
	case 10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond:
	default:
		return fmt.Errorf("%w: audio.vad_frame %s must be 10ms, 20ms or 30ms", ErrInvalid, c.Audio.VADFrame)
	}
	if !pronounce.Aggregation(c.Scoring.Aggregation).Valid() {
		return fmt.Errorf("%w: scoring.aggregation %q", ErrInvalid, c.Scoring.Aggregation)
	}
	for name, v := range c.Scoring.Thresholds {
		if _, err := pronounce.ParseTier(name); err != nil {
			return fmt.Errorf("%w: scoring.thresholds: %w", ErrInvalid, err)
		}
		if v <= 0 {
			return fmt.Errorf("%w: scoring.thresholds.%s must be positive", ErrInvalid, name)
		}
	}
	th := c.Thresholds()
	for _, t := range []pronounce.Tier{pronounce.TierA, pronounce.TierB, pronounce.TierC} {
		if _, ok := th[t]; !ok {
			return fmt.Errorf("%w: scoring.thresholds.%s is missing", ErrInvalid, t)
		}
	}
	// Higher tiers are stricter: a pass at C implies a pass at B and A.
	if th[pronounce.TierA] < th[pronounce.TierB] || th[pronounce.TierB] < th[pronounce.TierC] {
		return fmt.Errorf("%w: scoring.thresholds must satisfy A >= B >= C, got %v", ErrInvalid, c.Scoring.Thresholds)
	}
	if c.Corpus.Archive == "" {
		return fmt.Errorf("%w: corpus.archive is empty", ErrInvalid)
	}
	switch c.Corpus.Storage.Backend {
	case "", storage.BackendLocal:
	case storage.BackendS3:
		if c.Corpus.Storage.Bucket == "" {
			return fmt.Errorf("%w: corpus.storage.bucket is required for s3", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: corpus.storage.backend %q", ErrInvalid, c.Corpus.Storage.Backend)
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("%w: build.workers %d", ErrInvalid, c.Build.Workers)
	}
	return nil
}

// Decoder builds the audio decoder, with the ffmpeg fallback unless
// disabled.
func (c *Config) Decoder(logger *slog.Logger) *decode.Decoder {
	opts := decode.Options{SampleRate: c.Audio.SampleRate, Logger: logger}
	if !c.Audio.FFmpeg.Disabled {
		opts.External = decode.NewFFmpeg(decode.FFmpegOptions{
			Path:          c.Audio.FFmpeg.Path,
			SampleRate:    c.Audio.SampleRate,
			Timeout:       c.Audio.FFmpeg.Timeout,
			MaxConcurrent: c.Audio.FFmpeg.MaxConcurrent,
		})
	}
	return decode.New(opts)
}

// Trim returns the silence trimming options.
func (c *Config) Trim() trim.Options {
	return trim.Options{TopDB: c.Audio.TrimTopDB}
}

// Segmenter builds the voice activity segmenter.
func (c *Config) Segmenter() (*vad.Segmenter, error) {
	mode := c.Audio.VADMode
	return vad.New(vad.Options{Mode: &mode, FrameDuration: c.Audio.VADFrame})
}

// Thresholds returns the per-tier thresholds.
func (c *Config) Thresholds() pronounce.Thresholds {
	th := make(pronounce.Thresholds, len(c.Scoring.Thresholds))
	for name, v := range c.Scoring.Thresholds {
		if t, err := pronounce.ParseTier(name); err == nil {
			th[t] = v
		}
	}
	return th
}

// mergeThresholds overlays parsed thresholds on the defaults. Tier names are
// canonicalized; unknown names are kept for Validate to report.
func mergeThresholds(defaults, parsed map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(defaults)+len(parsed))
	for name, v := range defaults {
		out[name] = v
	}
	for name, v := range parsed {
		if t, err := pronounce.ParseTier(name); err == nil {
			name = string(t)
		}
		out[name] = v
	}
	return out
}

// EvaluatorOptions assembles the options of a pronounce.Evaluator.
func (c *Config) EvaluatorOptions(logger *slog.Logger) (pronounce.Options, error) {
	ext, err := mfcc.New(c.Features)
	if err != nil {
		return pronounce.Options{}, err
	}
	seg, err := c.Segmenter()
	if err != nil {
		return pronounce.Options{}, err
	}
	points := c.Scoring.Points
	return pronounce.Options{
		Decoder:     c.Decoder(logger),
		Extractor:   ext,
		Segmenter:   seg,
		Trim:        c.Trim(),
		Aggregation: pronounce.Aggregation(c.Scoring.Aggregation),
		Thresholds:  c.Thresholds(),
		Points:      &points,
		Logger:      logger,
	}, nil
}

// OpenCatalog opens the catalog store. A non-empty override replaces the
// configured directory.
func (c *Config) OpenCatalog(override string, logger *slog.Logger) (catalog.Store, error) {
	dir := c.Catalog.Dir
	if override != "" {
		dir = override
	}
	return catalog.NewBadger(catalog.BadgerOptions{Dir: dir, InMemory: c.Catalog.InMemory, Logger: logger})
}
