package pcm

import (
	"math"
	"time"
)

// Buffer is a mono sequence of float32 samples in [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// New returns a Buffer wrapping samples at the given rate.
func New(samples []float32, sampleRate int) *Buffer {
	return &Buffer{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// IsEmpty reports whether the buffer holds no samples.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Slice returns a buffer sharing the samples in [start, end).
func (b *Buffer) Slice(start, end int) *Buffer {
	return &Buffer{Samples: b.Samples[start:end], SampleRate: b.SampleRate}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	s := make([]float32, len(b.Samples))
	copy(s, b.Samples)
	return &Buffer{Samples: s, SampleRate: b.SampleRate}
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32
	for _, s := range b.Samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	return peak
}
