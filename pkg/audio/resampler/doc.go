// Package resampler converts mono sample buffers between sample rates using
// a pure Go windowed-sinc resampler (no CGO/FFI dependencies).
//
// Decoders produce audio at whatever rate the container carries (48kHz for
// Opus, 44.1kHz for most MP3s); everything downstream expects
// pcm.DefaultSampleRate.
//
// Example usage:
//
//	out, err := resampler.Resample(buf, pcm.DefaultSampleRate)
//	if err != nil {
//	    return err
//	}
package resampler
