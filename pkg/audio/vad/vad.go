// Package vad keeps only the speech frames of a PCM buffer.
//
// The buffer is cut into fixed, non-overlapping frames, each frame is
// converted to 16-bit PCM and handed to a Classifier, and the frames judged
// to contain speech are concatenated in order. A trailing partial frame is
// dropped.
package vad

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// Defaults.
const (
	DefaultMode          = 3
	DefaultFrameDuration = 30 * time.Millisecond
)

// Sentinel errors.
var (
	// ErrInvalidFrame is returned for frame durations other than 10, 20 or
	// 30ms, or sample rates the classifier cannot handle.
	ErrInvalidFrame = errors.New("vad: invalid frame configuration")

	// ErrInvalidMode is returned for aggressiveness modes outside 0..3.
	ErrInvalidMode = errors.New("vad: invalid mode")
)

var supportedRates = []int{8000, 16000, 32000, 48000}

// Classifier decides whether one frame of 16-bit little-endian mono PCM
// contains speech.
type Classifier interface {
	IsSpeech(frame []byte, sampleRate int) (bool, error)
}

// NewClassifierFunc creates a classifier with the given aggressiveness mode.
// A fresh classifier is created for every buffer so that adaptive state never
// leaks between requests.
type NewClassifierFunc func(mode int) (Classifier, error)

// Options configures a Segmenter.
type Options struct {
	// Mode is the aggressiveness, 0 (least) to 3 (most). Default is 3.
	Mode *int

	// FrameDuration is 10, 20 or 30ms. Default is 30ms.
	FrameDuration time.Duration

	// NewClassifier overrides the classifier. Default is NewWebRTC.
	NewClassifier NewClassifierFunc
}

// Stats summarizes one segmentation.
type Stats struct {
	Frames       int
	SpeechFrames int
	Dropped      int // samples in the trailing partial frame
}

// Segmenter filters non-speech frames out of buffers.
type Segmenter struct {
	mode          int
	frameDuration time.Duration
	newClassifier NewClassifierFunc
}

// New creates a Segmenter.
func New(opts Options) (*Segmenter, error) {
	s := &Segmenter{
		mode:          DefaultMode,
		frameDuration: opts.FrameDuration,
		newClassifier: opts.NewClassifier,
	}
	if opts.Mode != nil {
		s.mode = *opts.Mode
	}
	if s.mode < 0 || s.mode > 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, s.mode)
	}
	if s.frameDuration == 0 {
		s.frameDuration = DefaultFrameDuration
	}
	switch s.frameDuration {
	case 10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond:
	default:
		return nil, fmt.Errorf("%w: frame duration %s", ErrInvalidFrame, s.frameDuration)
	}
	if s.newClassifier == nil {
		s.newClassifier = NewWebRTC
	}
	return s, nil
}

// Segment returns the concatenated speech frames of buf. If no frame is
// speech the result is empty.
func (s *Segmenter) Segment(buf *pcm.Buffer) (*pcm.Buffer, error) {
	out, _, err := s.SegmentWithStats(buf)
	return out, err
}

// SegmentWithStats is Segment that also reports frame counts.
func (s *Segmenter) SegmentWithStats(buf *pcm.Buffer) (*pcm.Buffer, Stats, error) {
	var st Stats
	if !slices.Contains(supportedRates, buf.SampleRate) {
		return nil, st, fmt.Errorf("%w: sample rate %d", ErrInvalidFrame, buf.SampleRate)
	}

	format := pcm.Mono(buf.SampleRate)
	frameLen := format.SamplesInDuration(s.frameDuration)
	st.Frames = buf.Len() / frameLen
	st.Dropped = buf.Len() - st.Frames*frameLen
	if st.Frames == 0 {
		return pcm.New(nil, buf.SampleRate), st, nil
	}

	cls, err := s.newClassifier(s.mode)
	if err != nil {
		return nil, st, fmt.Errorf("vad: create classifier: %w", err)
	}

	raw := pcm.EncodeInt16LE(buf.Samples[:st.Frames*frameLen])
	frameBytes := format.BytesInDuration(s.frameDuration)
	speech := make([]byte, 0, len(raw))
	for i := 0; i < st.Frames; i++ {
		frame := raw[i*frameBytes : (i+1)*frameBytes]
		ok, err := cls.IsSpeech(frame, buf.SampleRate)
		if err != nil {
			return nil, st, fmt.Errorf("vad: frame %d: %w", i, err)
		}
		if ok {
			st.SpeechFrames++
			speech = append(speech, frame...)
		}
	}
	return pcm.ScaledInt16LE(speech, buf.SampleRate), st, nil
}
