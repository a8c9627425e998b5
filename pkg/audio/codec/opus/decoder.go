package opus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"layeh.com/gopus"

	"github.com/haivivi/pronounce/pkg/audio/codec/ogg"
	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// ErrNoAudio is returned when a stream contains no decodable audio packets.
var ErrNoAudio = errors.New("opus: no audio decoded")

// Decoder wraps a libopus decoder for one logical stream.
type Decoder struct {
	channels int
	dec      *gopus.Decoder
}

// NewDecoder creates a 48kHz decoder for the given channel count.
func NewDecoder(channels int) (*Decoder, error) {
	dec, err := gopus.NewDecoder(SampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("opus: create decoder: %w", err)
	}
	return &Decoder{channels: channels, dec: dec}, nil
}

// Decode decodes one Opus packet into interleaved int16 samples.
func (d *Decoder) Decode(packet []byte) ([]int16, error) {
	samples, err := d.dec.Decode(packet, maxFrameSamples, false)
	if err != nil {
		return nil, fmt.Errorf("opus: decode: %w", err)
	}
	return samples, nil
}

// DecodeOgg decodes the first Opus stream of an Ogg bitstream into a mono
// 48kHz buffer. Packets that fail to decode are skipped; pre-skip samples
// are dropped from the start of the output and the header's output gain is
// applied before downmixing.
func DecodeOgg(r io.Reader) (*pcm.Buffer, error) {
	var (
		head    *Head
		dec     *Decoder
		serial  uint32
		pcm16   []int16
		skipped int
	)

	for pkt, err := range ogg.ReadPackets(r) {
		if err != nil {
			return nil, err
		}
		if head == nil {
			h, err := ParseHead(pkt.Data)
			if err != nil {
				return nil, err
			}
			head, serial = h, pkt.SerialNo
			if dec, err = NewDecoder(h.Channels); err != nil {
				return nil, err
			}
			continue
		}
		if pkt.SerialNo != serial || IsTags(pkt.Data) || len(pkt.Data) == 0 {
			continue
		}
		samples, err := dec.Decode(pkt.Data)
		if err != nil {
			skipped++
			continue
		}
		pcm16 = append(pcm16, samples...)
	}

	if head == nil || len(pcm16) == 0 {
		return nil, ErrNoAudio
	}
	if skipped > 0 {
		slog.Debug("opus: skipped undecodable packets", "count", skipped)
	}

	skip := head.PreSkip * head.Channels
	if skip > len(pcm16) {
		skip = len(pcm16)
	}
	samples := pcm.Int16sToFloat32(pcm16[skip:])
	if head.OutputGain != 0 {
		applyGain(samples, float32(head.Gain()))
	}
	mono := pcm.Downmix(samples, head.Channels)
	if len(mono) == 0 {
		return nil, ErrNoAudio
	}
	return pcm.New(mono, SampleRate), nil
}

// applyGain scales samples in place, clipping to [-1, 1].
func applyGain(samples []float32, gain float32) {
	for i, v := range samples {
		samples[i] = max(-1, min(1, v*gain))
	}
}
