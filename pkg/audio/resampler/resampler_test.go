package resampler

import (
	"errors"
	"math"
	"testing"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

func sine(rate int, freq float64, n int) *pcm.Buffer {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return pcm.New(s, rate)
}

func TestResampleSameRate(t *testing.T) {
	in := sine(16000, 440, 1600)
	out, err := Resample(in, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("len = %d, want %d", out.Len(), in.Len())
	}
	if &out.Samples[0] != &in.Samples[0] {
		t.Error("same-rate resample should not copy")
	}
}

func TestResampleDownsample(t *testing.T) {
	in := sine(48000, 440, 48000)
	out, err := Resample(in, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if out.SampleRate != 16000 {
		t.Fatalf("rate = %d, want 16000", out.SampleRate)
	}
	if out.Len() != 16000 {
		t.Fatalf("len = %d, want 16000", out.Len())
	}
	for i, s := range out.Samples {
		if s > 1 || s < -1 {
			t.Fatalf("sample %d out of range: %f", i, s)
		}
	}
	t.Logf("48k -> 16k: %d -> %d samples", in.Len(), out.Len())
}

func TestResampleInvalidRate(t *testing.T) {
	_, err := Resample(pcm.New([]float32{0}, 0), 16000)
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := Resample(pcm.New(nil, 44100), 16000)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsEmpty() || out.SampleRate != 16000 {
		t.Fatalf("got len=%d rate=%d", out.Len(), out.SampleRate)
	}
}

func TestResampleKeepsTail(t *testing.T) {
	tests := []struct {
		src, dst, n, want int
	}{
		{48000, 16000, 4800, 1600},
		{48000, 16000, 48000, 16000},
		{48000, 16000, 96000, 32000},
		{44100, 16000, 44100, 16000},
		{8000, 16000, 800, 1600},
	}
	for _, tt := range tests {
		out, err := Resample(sine(tt.src, 440, tt.n), tt.dst)
		if err != nil {
			t.Fatal(err)
		}
		if out.Len() != tt.want {
			t.Errorf("%d samples %d -> %d: len = %d, want %d", tt.n, tt.src, tt.dst, out.Len(), tt.want)
		}
		// The end of the tone must survive, not only the head.
		var peak float32
		for _, s := range out.Samples[out.Len()*3/4 : out.Len()*9/10] {
			peak = max(peak, s)
		}
		if peak < 0.3 {
			t.Errorf("%d -> %d: tail peak %.3f, want ~0.5", tt.src, tt.dst, peak)
		}
	}
}

func TestOutputLen(t *testing.T) {
	if got := OutputLen(44100, 44100, 16000); got != 16000 {
		t.Errorf("OutputLen = %d, want 16000", got)
	}
	if got := OutputLen(3, 48000, 16000); got != 1 {
		t.Errorf("OutputLen = %d, want 1", got)
	}
}
