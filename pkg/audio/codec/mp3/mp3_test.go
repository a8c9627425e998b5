package mp3

import (
	"bytes"
	"testing"
)

func TestIsMP3(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"id3", []byte("ID3\x04\x00\x00"), true},
		{"frame sync layer3", []byte{0xFF, 0xFB, 0x90, 0x64}, true},
		{"frame sync mpeg2", []byte{0xFF, 0xF3, 0x48, 0xC4}, true},
		{"adts aac", []byte{0xFF, 0xF1, 0x50, 0x80}, false},
		{"riff", []byte("RIFF"), false},
		{"short", []byte{0xFF}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMP3(tt.data); got != tt.want {
				t.Errorf("IsMP3(% x) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an mp3 stream at all"))); err == nil {
		t.Fatal("expected error for garbage input")
	}
}
