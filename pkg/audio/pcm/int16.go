package pcm

import "math"

// Int16Scale is the factor used when converting floats to 16-bit PCM and
// back in the voice-activity path.
const Int16Scale = 32767

// EncodeInt16LE converts float samples to 16-bit signed little-endian bytes.
// Samples are scaled by Int16Scale, rounded to nearest and clamped; no
// dithering is applied.
func EncodeInt16LE(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Round(float64(s) * Int16Scale)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		x := int16(v)
		out[i*2] = byte(x)
		out[i*2+1] = byte(x >> 8)
	}
	return out
}

// DecodeInt16LE converts 16-bit signed little-endian mono bytes to a Buffer,
// normalizing by 32768. A trailing odd byte is ignored.
func DecodeInt16LE(b []byte, sampleRate int) *Buffer {
	n := len(b) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(b[i*2]) | int16(b[i*2+1])<<8
		samples[i] = float32(s) / 32768.0
	}
	return New(samples, sampleRate)
}

// ScaledInt16LE converts 16-bit bytes back to floats by dividing by
// Int16Scale, the exact inverse of EncodeInt16LE for in-range samples.
func ScaledInt16LE(b []byte, sampleRate int) *Buffer {
	n := len(b) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(b[i*2]) | int16(b[i*2+1])<<8
		samples[i] = float32(s) / Int16Scale
	}
	return New(samples, sampleRate)
}

// Int16sToFloat32 converts interleaved int16 samples to floats normalized by
// 32768.
func Int16sToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Downmix averages interleaved channels into a mono sequence.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	n := len(interleaved) / channels
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
