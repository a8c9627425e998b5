// Package trim removes leading and trailing silence from a PCM buffer.
//
// Silence is judged per frame: the RMS envelope is computed over centered
// frames, converted to dB relative to the loudest frame, and frames more than
// TopDB below that peak are considered silent. Silence inside the utterance
// is preserved.
package trim

import (
	"math"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// Defaults.
const (
	DefaultTopDB       = 20.0
	DefaultFrameLength = 2048
	DefaultHopLength   = 512
)

// Options configures Trim. Zero values take the defaults.
type Options struct {
	TopDB       float64
	FrameLength int
	HopLength   int
}

func (o Options) withDefaults() Options {
	if o.TopDB <= 0 {
		o.TopDB = DefaultTopDB
	}
	if o.FrameLength <= 0 {
		o.FrameLength = DefaultFrameLength
	}
	if o.HopLength <= 0 {
		o.HopLength = DefaultHopLength
	}
	return o
}

// amin floors power before taking the log.
const amin = 1e-10

// Trim returns the slice of buf between the first and last non-silent
// frames. The result shares buf's backing array. An all-silent or empty
// input yields an empty buffer at the same sample rate.
func Trim(buf *pcm.Buffer, opts Options) *pcm.Buffer {
	opts = opts.withDefaults()
	n := buf.Len()
	if n == 0 {
		return pcm.New(nil, buf.SampleRate)
	}

	power := framePower(buf.Samples, opts.FrameLength, opts.HopLength)

	var ref float64
	for _, p := range power {
		ref = max(ref, p)
	}
	if ref <= amin {
		return pcm.New(nil, buf.SampleRate)
	}

	first, last := -1, -1
	refDB := 10 * math.Log10(ref)
	for i, p := range power {
		db := 10*math.Log10(max(p, amin)) - refDB
		if db > -opts.TopDB {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return pcm.New(nil, buf.SampleRate)
	}

	start := first * opts.HopLength
	end := min(n, (last+1)*opts.HopLength)
	if start >= end {
		return pcm.New(nil, buf.SampleRate)
	}
	return buf.Slice(start, end)
}

// framePower returns the mean square of each centered frame. The signal is
// zero-padded by frameLength/2 on both sides so frame t is centered on sample
// t*hop.
func framePower(x []float32, frameLength, hop int) []float64 {
	pad := frameLength / 2
	nFrames := 1 + len(x)/hop
	out := make([]float64, nFrames)
	for t := range out {
		center := t * hop
		lo := center - pad
		hi := lo + frameLength
		var sum float64
		for i := max(lo, 0); i < min(hi, len(x)); i++ {
			v := float64(x[i])
			sum += v * v
		}
		out[t] = sum / float64(frameLength)
	}
	return out
}
