package opus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3/pkg/media/oggwriter"
	"layeh.com/gopus"
)

const frameSize = 960 // 20ms at 48kHz

// encodeTone produces an Ogg Opus stream holding frames*20ms of a sine tone.
func encodeTone(t *testing.T, channels, frames int) []byte {
	t.Helper()

	enc, err := gopus.NewEncoder(SampleRate, channels, gopus.Audio)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	var out bytes.Buffer
	w, err := oggwriter.NewWith(&out, SampleRate, uint16(channels))
	if err != nil {
		t.Fatalf("oggwriter.NewWith: %v", err)
	}

	n := 0
	for f := 0; f < frames; f++ {
		pcm := make([]int16, frameSize*channels)
		for i := 0; i < frameSize; i++ {
			v := int16(12000 * math.Sin(2*math.Pi*440*float64(n)/SampleRate))
			for c := 0; c < channels; c++ {
				pcm[i*channels+c] = v
			}
			n++
		}
		data, err := enc.Encode(pcm, frameSize, 4000)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				SequenceNumber: uint16(f),
				Timestamp:      uint32(f * frameSize),
			},
			Payload: data,
		}
		if err := w.WriteRTP(pkt); err != nil {
			t.Fatalf("WriteRTP: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return out.Bytes()
}

func TestDecodeOggMono(t *testing.T) {
	data := encodeTone(t, 1, 25)

	buf, err := DecodeOgg(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeOgg: %v", err)
	}
	if buf.SampleRate != SampleRate {
		t.Errorf("SampleRate = %d, want %d", buf.SampleRate, SampleRate)
	}

	head, err := ParseHead(firstPacket(t, data))
	if err != nil {
		t.Fatalf("ParseHead: %v", err)
	}
	want := 25*frameSize - head.PreSkip
	if buf.Len() != want {
		t.Errorf("Len = %d, want %d (pre-skip %d)", buf.Len(), want, head.PreSkip)
	}
	if peak := buf.Peak(); peak < 0.1 {
		t.Errorf("Peak = %f, tone seems lost", peak)
	}
}

func TestDecodeOggStereoDownmix(t *testing.T) {
	buf, err := DecodeOgg(bytes.NewReader(encodeTone(t, 2, 10)))
	if err != nil {
		t.Fatalf("DecodeOgg: %v", err)
	}
	if buf.Len() == 0 || buf.Len() > 10*frameSize {
		t.Errorf("Len = %d, want mono sample count", buf.Len())
	}
}

// withOutputGain rewrites the OpusHead output gain of a stream and refreshes
// the first page checksum.
func withOutputGain(t *testing.T, data []byte, gain int16) []byte {
	t.Helper()
	out := bytes.Clone(data)
	nseg := int(out[26])
	size := 0
	for _, lv := range out[27 : 27+nseg] {
		size += int(lv)
	}
	start := 27 + nseg
	binary.LittleEndian.PutUint16(out[start+16:], uint16(gain))

	page := out[:start+size]
	binary.LittleEndian.PutUint32(page[22:26], 0)
	var crc uint32
	for _, b := range page {
		crc ^= uint32(b) << 24
		for i := 0; i < 8; i++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04c11db7
			} else {
				crc <<= 1
			}
		}
	}
	binary.LittleEndian.PutUint32(page[22:26], crc)
	return out
}

func TestDecodeOggOutputGain(t *testing.T) {
	data := encodeTone(t, 1, 10)
	plain, err := DecodeOgg(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeOgg: %v", err)
	}

	tests := []struct {
		name string
		gain int16
		want float64
	}{
		{"minus 6dB", -6 * 256, 0.501},
		{"minus 20dB", -20 * 256, 0.1},
		{"plus 3dB", 3 * 256, 1.413},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := DecodeOgg(bytes.NewReader(withOutputGain(t, data, tt.gain)))
			if err != nil {
				t.Fatalf("DecodeOgg: %v", err)
			}
			if buf.Len() != plain.Len() {
				t.Fatalf("Len = %d, want %d", buf.Len(), plain.Len())
			}
			ratio := float64(buf.Peak()) / float64(plain.Peak())
			if math.Abs(ratio-tt.want) > 0.01 {
				t.Errorf("peak ratio = %.3f, want %.3f", ratio, tt.want)
			}
		})
	}
}

func TestHeadGain(t *testing.T) {
	tests := []struct {
		gain int16
		want float64
	}{
		{0, 1},
		{-6 * 256, 0.50119},
		{20 * 256, 10},
		{128, 1.05925}, // 0.5 dB
	}
	for _, tt := range tests {
		h := &Head{OutputGain: tt.gain}
		if got := h.Gain(); math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("Gain(%d) = %f, want %f", tt.gain, got, tt.want)
		}
	}
}

func TestApplyGainClips(t *testing.T) {
	samples := []float32{0.1, -0.2, 0.8, -0.9}
	applyGain(samples, 2)
	want := []float32{0.2, -0.4, 1, -1}
	for i := range want {
		if math.Abs(float64(samples[i]-want[i])) > 1e-6 {
			t.Errorf("samples[%d] = %f, want %f", i, samples[i], want[i])
		}
	}
}

func TestDecodeOggHeadersOnly(t *testing.T) {
	_, err := DecodeOgg(bytes.NewReader(encodeTone(t, 1, 0)))
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func TestParseHead(t *testing.T) {
	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1
	head[9] = 2
	binary.LittleEndian.PutUint16(head[10:], 312)
	binary.LittleEndian.PutUint32(head[12:], 16000)

	h, err := ParseHead(head)
	if err != nil {
		t.Fatalf("ParseHead: %v", err)
	}
	if h.Channels != 2 || h.PreSkip != 312 || h.InputSampleRate != 16000 {
		t.Errorf("head = %+v", h)
	}

	if _, err := ParseHead(head[:10]); !errors.Is(err, ErrBadHead) {
		t.Errorf("short head: got %v", err)
	}

	multi := bytes.Clone(head)
	multi[18] = 1
	if _, err := ParseHead(multi); !errors.Is(err, ErrUnsupportedMapping) {
		t.Errorf("mapping family 1: got %v", err)
	}
}

// firstPacket returns the body of the first Ogg page, which for Opus holds
// exactly the OpusHead packet.
func firstPacket(t *testing.T, data []byte) []byte {
	t.Helper()
	if len(data) < 27 {
		t.Fatal("stream too short")
	}
	nseg := int(data[26])
	size := 0
	for _, lv := range data[27 : 27+nseg] {
		size += int(lv)
	}
	start := 27 + nseg
	return data[start : start+size]
}
