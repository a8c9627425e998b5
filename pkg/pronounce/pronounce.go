// Package pronounce grades a learner's recording of a word against native
// reference recordings.
//
// The submission is decoded, trimmed, reduced to its speech frames and turned
// into MFCC features. Those features are aligned with every reference of the
// word by DTW, the costs are aggregated, and the result is compared with the
// threshold of the requested tier.
package pronounce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/pronounce/pkg/audio/decode"
	"github.com/haivivi/pronounce/pkg/audio/mfcc"
	"github.com/haivivi/pronounce/pkg/audio/trim"
	"github.com/haivivi/pronounce/pkg/audio/vad"
	"github.com/haivivi/pronounce/pkg/corpus"
	"github.com/haivivi/pronounce/pkg/dtw"
)

// maxSuggestions bounds the suggestions in an UnknownWordError.
const maxSuggestions = 3

// Options configures an Evaluator. Zero values take the defaults.
type Options struct {
	// Decoder decodes submissions. Default is decode.New at the corpus
	// sample rate with no external fallback.
	Decoder *decode.Decoder

	// Extractor computes features. Default is built from the corpus params.
	Extractor *mfcc.Extractor

	// Segmenter keeps speech frames. Default is vad.New with default options.
	Segmenter *vad.Segmenter

	// Trim configures silence trimming.
	Trim trim.Options

	// Aggregation is min (default) or mean.
	Aggregation Aggregation

	// Thresholds per tier. Default is DefaultThresholds.
	Thresholds Thresholds

	// Points per outcome. Default is DefaultPoints.
	Points *Points

	// Metrics records outcomes. Default records nothing.
	Metrics *Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Evaluator grades submissions. It holds no per-request state and is safe
// for concurrent use.
type Evaluator struct {
	corpus     *corpus.Holder
	decoder    *decode.Decoder
	extractor  *mfcc.Extractor
	segmenter  *vad.Segmenter
	trim       trim.Options
	agg        Aggregation
	thresholds Thresholds
	points     Points
	metrics    *Metrics
	logger     *slog.Logger
}

// Request is one graded attempt.
type Request struct {
	Word          string
	Tier          Tier
	Audio         []byte
	ContainerHint string
}

// ScoreResult is the alignment outcome of a submission against a word.
type ScoreResult struct {
	// Word is the normalized word.
	Word string

	// Cost is the aggregated normalized DTW cost.
	Cost float64

	// MatchedIndex is the index of the reference with the lowest cost.
	MatchedIndex int

	// Costs holds the cost against each reference, in index order.
	Costs []float64

	// Frames is the number of feature frames of the submission.
	Frames int

	// Speech summarizes voice activity detection.
	Speech vad.Stats
}

// Decision is the graded outcome of a Request.
type Decision struct {
	Word         string  `json:"word" yaml:"word"`
	Tier         Tier    `json:"tier" yaml:"tier"`
	Passed       bool    `json:"passed" yaml:"passed"`
	Points       int     `json:"points" yaml:"points"`
	RawCost      float64 `json:"raw_cost" yaml:"raw_cost"`
	Threshold    float64 `json:"threshold" yaml:"threshold"`
	MatchedIndex int     `json:"matched_index" yaml:"matched_index"`
}

// New creates an Evaluator over the corpus in h. It fails with
// ErrParamsMismatch when the extractor's params differ from the corpus's.
func New(h *corpus.Holder, opts Options) (*Evaluator, error) {
	c := h.Get()
	if c == nil {
		return nil, fmt.Errorf("%w: no corpus loaded", corpus.ErrCorpusLoad)
	}
	e := &Evaluator{
		corpus:     h,
		decoder:    opts.Decoder,
		extractor:  opts.Extractor,
		segmenter:  opts.Segmenter,
		trim:       opts.Trim,
		agg:        opts.Aggregation,
		thresholds: opts.Thresholds,
		points:     DefaultPoints(),
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.extractor == nil {
		ext, err := mfcc.New(c.Params())
		if err != nil {
			return nil, err
		}
		e.extractor = ext
	}
	if err := e.checkParams(c); err != nil {
		return nil, err
	}
	if e.decoder == nil {
		e.decoder = decode.New(decode.Options{SampleRate: c.Params().SampleRate, Logger: e.logger})
	}
	if e.decoder.SampleRate() != c.Params().SampleRate {
		return nil, fmt.Errorf("%w: decoder rate %d, corpus rate %d",
			ErrParamsMismatch, e.decoder.SampleRate(), c.Params().SampleRate)
	}
	if e.segmenter == nil {
		seg, err := vad.New(vad.Options{})
		if err != nil {
			return nil, err
		}
		e.segmenter = seg
	}
	if e.agg == "" {
		e.agg = AggregateMin
	}
	if !e.agg.Valid() {
		return nil, fmt.Errorf("pronounce: unknown aggregation %q", e.agg)
	}
	if e.thresholds == nil {
		e.thresholds = DefaultThresholds()
	}
	if opts.Points != nil {
		e.points = *opts.Points
	}
	if e.metrics == nil {
		e.metrics = noopMetrics()
	}
	return e, nil
}

func (e *Evaluator) checkParams(c *corpus.Corpus) error {
	if !e.extractor.Params().Compatible(c.Params()) {
		return fmt.Errorf("%w: extractor %s, corpus %s",
			ErrParamsMismatch, e.extractor.Params().Fingerprint(), c.Params().Fingerprint())
	}
	return nil
}

// Score aligns a submission with every reference of word.
func (e *Evaluator) Score(ctx context.Context, word string, audio []byte, hint string) (*ScoreResult, error) {
	c := e.corpus.Get()
	if err := e.checkParams(c); err != nil {
		return nil, err
	}
	refs := c.Lookup(word)
	if len(refs) == 0 {
		return nil, &UnknownWordError{Word: word, Suggestions: c.Suggest(word, maxSuggestions)}
	}

	feats, stats, err := e.features(ctx, audio, hint)
	if err != nil {
		return nil, err
	}

	costs := make([]float64, len(refs))
	for i, ref := range refs {
		res, err := dtw.Score(ref.Features, feats)
		if err != nil {
			return nil, fmt.Errorf("pronounce: align with %s: %w", ref.Key(), err)
		}
		costs[i] = res.Cost
	}
	cost, best := e.agg.apply(costs)

	return &ScoreResult{
		Word:         refs[0].Word,
		Cost:         cost,
		MatchedIndex: refs[best].Index,
		Costs:        costs,
		Frames:       feats.Cols,
		Speech:       stats,
	}, nil
}

// features runs decode, trim, VAD and MFCC extraction.
func (e *Evaluator) features(ctx context.Context, audio []byte, hint string) (*mfcc.Matrix, vad.Stats, error) {
	buf, err := e.decoder.Decode(ctx, audio, hint)
	if err != nil {
		return nil, vad.Stats{}, err
	}
	trimmed := trim.Trim(buf, e.trim)
	if trimmed.IsEmpty() {
		return nil, vad.Stats{}, fmt.Errorf("%w: silent after trimming", ErrEmptyAudio)
	}
	speech, stats, err := e.segmenter.SegmentWithStats(trimmed)
	if err != nil {
		return nil, stats, fmt.Errorf("pronounce: vad: %w", err)
	}
	e.logger.Debug("voice activity",
		"decoded", buf.Duration(), "trimmed", trimmed.Duration(),
		"frames", stats.Frames, "speech_frames", stats.SpeechFrames)
	if speech.IsEmpty() {
		return nil, stats, ErrNoSpeech
	}
	feats, err := e.extractor.Extract(speech)
	if err != nil {
		return nil, stats, err
	}
	return feats, stats, nil
}

// Evaluate grades req.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (d *Decision, err error) {
	start := time.Now()
	defer func() {
		var cost float64
		if d != nil {
			cost = d.RawCost
		}
		e.metrics.record(ctx, req.Tier, statusOf(err), cost, time.Since(start))
	}()

	threshold, err := e.thresholds.Lookup(req.Tier)
	if err != nil {
		return nil, err
	}
	res, err := e.Score(ctx, req.Word, req.Audio, req.ContainerHint)
	if err != nil {
		e.logger.Info("evaluation not graded", "word", req.Word, "tier", req.Tier, "error", err)
		return nil, err
	}

	d = &Decision{
		Word:         res.Word,
		Tier:         req.Tier,
		Passed:       res.Cost < threshold,
		RawCost:      res.Cost,
		Threshold:    threshold,
		MatchedIndex: res.MatchedIndex,
	}
	d.Points = e.points.Fail
	if d.Passed {
		d.Points = e.points.Pass
	}
	e.logger.Info("evaluation graded", "word", d.Word, "tier", d.Tier,
		"cost", d.RawCost, "threshold", threshold, "passed", d.Passed)
	return d, nil
}
