// Package pcm provides the in-memory sample buffer shared by the decoding,
// trimming, segmentation and feature-extraction stages.
//
// A Buffer holds mono float32 samples in [-1, 1] tagged with their sample
// rate. Downstream stages assume the system-wide rate (DefaultSampleRate)
// once decoding has finished; anything else must go through the resampler
// first.
//
// The package also converts between float samples and 16-bit signed
// little-endian PCM, which is what external transcoders emit and what the
// voice-activity classifier consumes.
//
// Example usage:
//
//	buf := pcm.DecodeInt16LE(raw, pcm.DefaultSampleRate)
//
//	// 30ms voice-activity frames at 16kHz
//	frameBytes := pcm.Mono(pcm.DefaultSampleRate).BytesInDuration(30 * time.Millisecond)
package pcm
