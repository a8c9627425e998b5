package decode

import (
	"bytes"
	"fmt"

	"github.com/haivivi/pronounce/pkg/audio/codec/mp3"
	"github.com/haivivi/pronounce/pkg/audio/codec/opus"
	"github.com/haivivi/pronounce/pkg/audio/codec/vorbis"
	"github.com/haivivi/pronounce/pkg/audio/codec/wav"
	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// Builtin is the in-process decoder for WAVE, Ogg Opus, Ogg Vorbis and MP3.
// Everything else is reported as ErrUnsupportedContainer.
type Builtin struct{}

var _ Native = Builtin{}

// DecodeNative implements Native.
func (Builtin) DecodeNative(data []byte, hint string) (*pcm.Buffer, error) {
	c := Sniff(data, hint)
	var (
		buf *pcm.Buffer
		err error
	)
	switch c {
	case ContainerWAV:
		buf, err = wav.Decode(bytes.NewReader(data))
	case ContainerOggOpus:
		buf, err = opus.DecodeOgg(bytes.NewReader(data))
	case ContainerOggVorbis:
		buf, err = vorbis.Decode(bytes.NewReader(data))
	case ContainerMP3:
		buf, err = mp3.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContainer, c)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %s: %w", c, err)
	}
	return buf, nil
}
