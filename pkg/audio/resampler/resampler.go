package resampler

import (
	"errors"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// ErrInvalidRate is returned when either side of a conversion has a
// non-positive sample rate.
var ErrInvalidRate = errors.New("resampler: invalid sample rate")

// OutputLen returns the number of samples n input samples at srcRate span
// at dstRate.
func OutputLen(n, srcRate, dstRate int) int {
	return int((int64(n)*int64(dstRate) + int64(srcRate)/2) / int64(srcRate))
}

// Resample converts buf to dstRate with the high quality preset. When the
// rates already match, buf is returned unchanged.
func Resample(buf *pcm.Buffer, dstRate int) (*pcm.Buffer, error) {
	if buf.SampleRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, buf.SampleRate, dstRate)
	}
	if buf.SampleRate == dstRate || buf.Len() == 0 {
		return pcm.New(buf.Samples, dstRate), nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(buf.SampleRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resampler: create: %w", err)
	}

	input := make([]float64, buf.Len())
	for i, s := range buf.Samples {
		input[i] = float64(s)
	}
	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: process: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resampler: flush: %w", err)
	}
	output = append(output, tail...)

	// The output covers exactly the input's duration at the new rate.
	want := OutputLen(buf.Len(), buf.SampleRate, dstRate)
	samples := make([]float32, want)
	for i, s := range output[:min(len(output), want)] {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		samples[i] = float32(s)
	}
	return pcm.New(samples, dstRate), nil
}
