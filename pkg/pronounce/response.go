package pronounce

import (
	"errors"

	"github.com/haivivi/pronounce/pkg/audio/decode"
)

// Status tells the caller how to present an evaluation.
type Status string

// Statuses.
const (
	// StatusGraded means the attempt was scored; Passed is meaningful.
	StatusGraded Status = "graded"

	// StatusNoSpeech means nothing audible was found; ask for a retry.
	StatusNoSpeech Status = "no_speech"

	// StatusUnavailable means the exercise cannot be graded right now, for
	// example because the word has no reference recordings.
	StatusUnavailable Status = "unavailable"

	// StatusRejected means the submission itself was unusable.
	StatusRejected Status = "rejected"
)

// Response is the caller-facing outcome of an evaluation. A failure to
// grade never appears as a failed attempt.
type Response struct {
	Status  Status  `json:"status" yaml:"status"`
	Passed  bool    `json:"passed" yaml:"passed"`
	Points  int     `json:"points" yaml:"points"`
	RawCost float64 `json:"raw_cost" yaml:"raw_cost"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// Respond maps the result of Evaluate to a Response.
func Respond(d *Decision, err error) Response {
	if err == nil && d != nil {
		return Response{
			Status:  StatusGraded,
			Passed:  d.Passed,
			Points:  d.Points,
			RawCost: d.RawCost,
		}
	}
	if err == nil {
		err = errors.New("pronounce: no decision")
	}
	return Response{Status: statusOf(err), Message: err.Error()}
}

func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusGraded
	case errors.Is(err, ErrNoSpeech), errors.Is(err, ErrEmptyAudio):
		return StatusNoSpeech
	case errors.Is(err, decode.ErrDecode), errors.Is(err, ErrInvalidTier):
		return StatusRejected
	default:
		return StatusUnavailable
	}
}
