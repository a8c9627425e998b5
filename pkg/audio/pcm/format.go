package pcm

import "time"

// DefaultSampleRate is the sample rate every stage after decoding works at.
const DefaultSampleRate = 16000

// Format describes interleaved 16-bit signed little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Mono returns the single-channel format at rate.
func Mono(rate int) Format {
	return Format{SampleRate: rate, Channels: 1}
}

// FrameBytes returns the number of bytes of one sample across all channels.
func (f Format) FrameBytes() int {
	return f.Channels * 2
}

// SamplesInDuration returns the number of samples per channel in d.
func (f Format) SamplesInDuration(d time.Duration) int {
	return int(int64(f.SampleRate) * int64(d) / int64(time.Second))
}

// BytesInDuration returns the number of bytes in d.
func (f Format) BytesInDuration(d time.Duration) int {
	return f.SamplesInDuration(d) * f.FrameBytes()
}
