package decode

import (
	"bytes"
	"strings"

	"github.com/haivivi/pronounce/pkg/audio/codec/mp3"
	"github.com/haivivi/pronounce/pkg/audio/codec/ogg"
)

// Container identifies an audio container format.
type Container string

const (
	ContainerUnknown   Container = "unknown"
	ContainerWAV       Container = "wav"
	ContainerOggOpus   Container = "ogg/opus"
	ContainerOggVorbis Container = "ogg/vorbis"
	ContainerOgg       Container = "ogg"
	ContainerMP3       Container = "mp3"
	ContainerWebM      Container = "webm"
)

var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// Sniff identifies the container of data from its leading bytes, falling
// back to the hint (a MIME type or file extension) when the bytes are
// inconclusive.
func Sniff(data []byte, hint string) Container {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return ContainerWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		switch ogg.DetectCodec(data) {
		case ogg.CodecOpus:
			return ContainerOggOpus
		case ogg.CodecVorbis:
			return ContainerOggVorbis
		}
		return ContainerOgg
	case bytes.HasPrefix(data, ebmlMagic):
		return ContainerWebM
	case mp3.IsMP3(data):
		return ContainerMP3
	}
	return fromHint(hint)
}

func fromHint(hint string) Container {
	h := strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexByte(h, ';'); i >= 0 {
		h = strings.TrimSpace(h[:i])
	}
	h = strings.TrimPrefix(h, ".")
	switch h {
	case "wav", "wave", "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return ContainerWAV
	case "mp3", "audio/mpeg", "audio/mp3":
		return ContainerMP3
	case "webm", "mkv", "audio/webm", "video/webm", "audio/x-matroska":
		return ContainerWebM
	case "ogg", "oga", "opus", "audio/ogg", "audio/opus":
		return ContainerOgg
	}
	return ContainerUnknown
}
