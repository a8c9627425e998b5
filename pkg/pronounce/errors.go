package pronounce

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haivivi/pronounce/pkg/audio/mfcc"
)

// Sentinel errors.
var (
	// ErrNoSpeech is returned when voice activity detection keeps nothing.
	ErrNoSpeech = errors.New("pronounce: no speech detected")

	// ErrUnknownWord is returned when the corpus has no recordings of the
	// requested word.
	ErrUnknownWord = errors.New("pronounce: unknown word")

	// ErrInvalidTier is returned for tiers without a threshold.
	ErrInvalidTier = errors.New("pronounce: invalid tier")

	// ErrParamsMismatch is returned when the extractor and the corpus were
	// configured with different feature parameters.
	ErrParamsMismatch = errors.New("pronounce: feature params mismatch")

	// ErrEmptyAudio is returned when trimming leaves too little audio to
	// extract features from.
	ErrEmptyAudio = mfcc.ErrEmptyAudio
)

// UnknownWordError reports a word missing from the corpus together with
// the closest known words.
type UnknownWordError struct {
	Word        string
	Suggestions []string
}

func (e *UnknownWordError) Error() string {
	msg := fmt.Sprintf("%v: %q", ErrUnknownWord, e.Word)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

func (e *UnknownWordError) Unwrap() error {
	return ErrUnknownWord
}
