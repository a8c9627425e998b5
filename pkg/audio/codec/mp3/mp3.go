// Package mp3 decodes MPEG-1/2 Layer III audio using hajimehoshi/go-mp3.
package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// ErrNoAudio is returned when the stream decodes to zero samples.
var ErrNoAudio = errors.New("mp3: no audio decoded")

// go-mp3 always emits 16-bit little-endian stereo.
const outChannels = 2

// Decode decodes an MP3 stream into a mono buffer at the stream's rate.
func Decode(r io.Reader) (*pcm.Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: open: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: decode: %w", err)
	}
	if len(raw) < 2*outChannels {
		return nil, ErrNoAudio
	}

	n := len(raw) / 2
	interleaved := make([]int16, n)
	for i := 0; i < n; i++ {
		interleaved[i] = int16(raw[i*2]) | int16(raw[i*2+1])<<8
	}
	mono := pcm.Downmix(pcm.Int16sToFloat32(interleaved), outChannels)
	return pcm.New(mono, dec.SampleRate()), nil
}

// IsMP3 reports whether data starts with an ID3 tag or an MPEG audio frame
// sync word.
func IsMP3(data []byte) bool {
	if len(data) >= 3 && string(data[:3]) == "ID3" {
		return true
	}
	// 11-bit frame sync, layer bits 01 (Layer III).
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1]&0x06 == 0x02
}
