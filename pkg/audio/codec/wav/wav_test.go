package wav

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Encode(f, pcm.New(samples, 16000)); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	buf, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.SampleRate != 16000 || buf.Len() != len(samples) {
		t.Fatalf("got %d samples at %d Hz", buf.Len(), buf.SampleRate)
	}
	for i, s := range buf.Samples {
		if d := math.Abs(float64(s - samples[i])); d > 1e-3 {
			t.Fatalf("sample %d: got %f, want %f", i, s, samples[i])
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a riff file")))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
