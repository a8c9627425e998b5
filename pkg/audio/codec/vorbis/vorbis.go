// Package vorbis decodes Ogg Vorbis streams using jfreymuth/oggvorbis.
package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// ErrNoAudio is returned when the stream decodes to zero samples.
var ErrNoAudio = errors.New("vorbis: no audio decoded")

// Decode decodes an Ogg Vorbis stream into a mono buffer at the stream's
// rate.
func Decode(r io.Reader) (*pcm.Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: decode: %w", err)
	}
	if format == nil || format.Channels < 1 {
		return nil, fmt.Errorf("vorbis: decode: missing format")
	}
	mono := pcm.Downmix(samples, format.Channels)
	if len(mono) == 0 {
		return nil, ErrNoAudio
	}
	return pcm.New(mono, format.SampleRate), nil
}
