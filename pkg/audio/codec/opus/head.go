// Package opus decodes Opus audio carried in Ogg containers (RFC 7845).
//
// Packet decoding is delegated to libopus through layeh.com/gopus; this
// package handles the identification header, pre-skip trimming and the
// conversion to mono float samples.
package opus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// SampleRate is the rate Opus always decodes at in this package.
const SampleRate = 48000

// maxFrameSamples is 120ms at 48kHz, the longest Opus packet duration.
const maxFrameSamples = 5760

var (
	headMagic = []byte("OpusHead")
	tagsMagic = []byte("OpusTags")
)

// Sentinel errors.
var (
	// ErrBadHead is returned when the identification header is malformed.
	ErrBadHead = errors.New("opus: malformed OpusHead")
	// ErrUnsupportedMapping is returned for multistream channel mappings.
	ErrUnsupportedMapping = errors.New("opus: unsupported channel mapping")
)

// Head is the Ogg Opus identification header.
type Head struct {
	Version         uint8
	Channels        int
	PreSkip         int
	InputSampleRate int
	OutputGain      int16
	MappingFamily   uint8
}

// ParseHead parses an OpusHead packet.
func ParseHead(data []byte) (*Head, error) {
	if len(data) < 19 || !bytes.HasPrefix(data, headMagic) {
		return nil, ErrBadHead
	}
	h := &Head{
		Version:         data[8],
		Channels:        int(data[9]),
		PreSkip:         int(binary.LittleEndian.Uint16(data[10:12])),
		InputSampleRate: int(binary.LittleEndian.Uint32(data[12:16])),
		OutputGain:      int16(binary.LittleEndian.Uint16(data[16:18])),
		MappingFamily:   data[18],
	}
	if h.Version>>4 != 0 {
		return nil, fmt.Errorf("%w: version %d", ErrBadHead, h.Version)
	}
	if h.Channels < 1 || h.Channels > 2 || h.MappingFamily != 0 {
		return nil, fmt.Errorf("%w: family %d with %d channels", ErrUnsupportedMapping, h.MappingFamily, h.Channels)
	}
	return h, nil
}

// Gain returns the linear factor for OutputGain, a Q7.8 value in dB.
func (h *Head) Gain() float64 {
	return math.Pow(10, float64(h.OutputGain)/(20*256))
}

// IsTags reports whether the packet is an OpusTags comment header.
func IsTags(data []byte) bool {
	return bytes.HasPrefix(data, tagsMagic)
}
