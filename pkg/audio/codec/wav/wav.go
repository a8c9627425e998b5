// Package wav reads and writes RIFF/WAVE PCM files using go-audio/wav.
package wav

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// ErrInvalid is returned for input that is not a readable PCM WAVE file.
var ErrInvalid = errors.New("wav: invalid file")

const formatPCM = 1

// Decode reads a PCM WAVE stream, downmixes it to mono and normalizes
// samples by the source bit depth.
func Decode(r io.ReadSeeker) (*pcm.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalid
	}
	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: audio format %d", ErrInvalid, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: read pcm: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrInvalid)
	}

	depth := int(dec.BitDepth)
	if depth <= 0 {
		depth = 16
	}
	scale := float32(math.Pow(2, float64(depth-1)))
	// 8-bit WAVE samples are unsigned.
	var offset int
	if depth == 8 {
		offset = 128
	}

	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float32(v-offset) / scale
	}
	mono := pcm.Downmix(interleaved, buf.Format.NumChannels)
	return pcm.New(mono, buf.Format.SampleRate), nil
}

// Encode writes buf as a 16-bit mono PCM WAVE file.
func Encode(w io.WriteSeeker, buf *pcm.Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate, 16, 1, formatPCM)
	data := make([]int, buf.Len())
	for i, s := range buf.Samples {
		v := math.Round(float64(s) * math.MaxInt16)
		data[i] = int(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("wav: write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: close: %w", err)
	}
	return nil
}
