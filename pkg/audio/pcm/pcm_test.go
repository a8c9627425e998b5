package pcm

import (
	"math"
	"testing"
	"time"
)

func TestFormatFrames(t *testing.T) {
	tests := []struct {
		f            Format
		d            time.Duration
		samples, len int
	}{
		{Mono(DefaultSampleRate), 30 * time.Millisecond, 480, 960},
		{Mono(DefaultSampleRate), 10 * time.Millisecond, 160, 320},
		{Mono(8000), 20 * time.Millisecond, 160, 320},
		{Format{SampleRate: 48000, Channels: 2}, 20 * time.Millisecond, 960, 3840},
	}
	for _, tt := range tests {
		if got := tt.f.SamplesInDuration(tt.d); got != tt.samples {
			t.Errorf("%+v SamplesInDuration(%v) = %d, want %d", tt.f, tt.d, got, tt.samples)
		}
		if got := tt.f.BytesInDuration(tt.d); got != tt.len {
			t.Errorf("%+v BytesInDuration(%v) = %d, want %d", tt.f, tt.d, got, tt.len)
		}
	}
}

func TestEncodeInt16LERoundsAndClamps(t *testing.T) {
	b := EncodeInt16LE([]float32{0, 1, -1, 2, -2, 0.5})
	want := []int16{0, 32767, -32767, 32767, -32768, 16384}
	for i, w := range want {
		got := int16(b[i*2]) | int16(b[i*2+1])<<8
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestScaledRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.75, 0.999}
	out := ScaledInt16LE(EncodeInt16LE(in), DefaultSampleRate)
	if out.Len() != len(in) {
		t.Fatalf("len = %d, want %d", out.Len(), len(in))
	}
	for i := range in {
		if math.Abs(float64(out.Samples[i]-in[i])) > 1.0/Int16Scale {
			t.Errorf("sample %d = %f, want ~%f", i, out.Samples[i], in[i])
		}
	}
}

func TestDecodeInt16LEIgnoresOddByte(t *testing.T) {
	buf := DecodeInt16LE([]byte{0x00, 0x40, 0x01}, 8000)
	if buf.Len() != 1 {
		t.Fatalf("len = %d, want 1", buf.Len())
	}
	if buf.Samples[0] != 0.5 {
		t.Errorf("sample = %f, want 0.5", buf.Samples[0])
	}
	if buf.SampleRate != 8000 {
		t.Errorf("rate = %d, want 8000", buf.SampleRate)
	}
}

func TestDownmix(t *testing.T) {
	got := Downmix([]float32{1, 0, 0.5, 0.5, -1, 1}, 2)
	want := []float32{0.5, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mono[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestBufferHelpers(t *testing.T) {
	var nilBuf *Buffer
	if !nilBuf.IsEmpty() {
		t.Error("nil buffer should be empty")
	}
	b := New([]float32{0.1, -0.8, 0.3, 0}, 16000)
	if b.Peak() != 0.8 {
		t.Errorf("Peak = %f, want 0.8", b.Peak())
	}
	s := b.Slice(1, 3)
	if s.Len() != 2 || s.Samples[0] != -0.8 {
		t.Errorf("Slice = %v", s.Samples)
	}
	c := b.Clone()
	c.Samples[0] = 1
	if b.Samples[0] == 1 {
		t.Error("Clone shares storage")
	}
	if d := New(make([]float32, 16000), 16000).Duration(); d != time.Second {
		t.Errorf("Duration = %v, want 1s", d)
	}
}
