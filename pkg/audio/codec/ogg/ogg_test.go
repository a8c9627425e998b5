package ogg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// encodePage builds a valid page carrying the given lacing values and body.
func encodePage(headerType byte, granule int64, serial, seq uint32, lacing, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString("OggS")
	b.WriteByte(0)
	b.WriteByte(headerType)
	binary.Write(&b, binary.LittleEndian, granule)
	binary.Write(&b, binary.LittleEndian, serial)
	binary.Write(&b, binary.LittleEndian, seq)
	binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteByte(byte(len(lacing)))
	b.Write(lacing)
	b.Write(body)
	out := b.Bytes()
	binary.LittleEndian.PutUint32(out[22:26], crcSum(out))
	return out
}

func collect(t *testing.T, data []byte) []*Packet {
	t.Helper()
	var pkts []*Packet
	for pkt, err := range ReadPackets(bytes.NewReader(data)) {
		if err != nil {
			t.Fatalf("ReadPackets: %v", err)
		}
		pkts = append(pkts, pkt)
	}
	return pkts
}

func TestReadPacketsMultiplePerPage(t *testing.T) {
	body := []byte("OpusHeadxxxxabc")
	page := encodePage(BOS, 0, 7, 0, []byte{12, 3}, body)

	pkts := collect(t, page)
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if string(pkts[0].Data) != "OpusHeadxxxx" || string(pkts[1].Data) != "abc" {
		t.Fatalf("packets = %q, %q", pkts[0].Data, pkts[1].Data)
	}
	if !pkts[0].BOS || pkts[0].SerialNo != 7 {
		t.Errorf("first packet BOS=%v serial=%d", pkts[0].BOS, pkts[0].SerialNo)
	}
}

func TestReadPacketsSpanningPages(t *testing.T) {
	big := bytes.Repeat([]byte{0xAB}, 300)
	p1 := encodePage(BOS, -1, 1, 0, []byte{255}, big[:255])
	p2 := encodePage(Continued|EOS, 960, 1, 1, []byte{45}, big[255:])

	pkts := collect(t, append(p1, p2...))
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
	if !bytes.Equal(pkts[0].Data, big) {
		t.Fatalf("reassembled packet has %d bytes, want %d", len(pkts[0].Data), len(big))
	}
	if pkts[0].Granule != 960 || !pkts[0].EOS {
		t.Errorf("granule=%d eos=%v", pkts[0].Granule, pkts[0].EOS)
	}
}

func TestReadPacketsBadChecksum(t *testing.T) {
	page := encodePage(BOS, 0, 1, 0, []byte{3}, []byte("abc"))
	page[len(page)-1] ^= 0xFF

	for _, err := range ReadPackets(bytes.NewReader(page)) {
		if !errors.Is(err, ErrBadChecksum) {
			t.Fatalf("expected ErrBadChecksum, got %v", err)
		}
		return
	}
	t.Fatal("expected an error")
}

func TestReadPacketsNotOgg(t *testing.T) {
	for _, err := range ReadPackets(bytes.NewReader([]byte("RIFF....WAVEfmt "))) {
		if !errors.Is(err, ErrNotOgg) {
			t.Fatalf("expected ErrNotOgg, got %v", err)
		}
		return
	}
	t.Fatal("expected an error")
}

func TestReadPacketsEmpty(t *testing.T) {
	for _, err := range ReadPackets(bytes.NewReader(nil)) {
		if err != io.ErrUnexpectedEOF {
			t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
		}
		return
	}
	t.Fatal("expected an error")
}

func TestReadPageTruncated(t *testing.T) {
	page := encodePage(BOS, 0, 1, 0, []byte{10}, []byte("0123456789"))
	_, err := ReadPage(bufio.NewReader(bytes.NewReader(page[:len(page)-4])))
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestDetectCodec(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Codec
	}{
		{"opus", encodePage(BOS, 0, 1, 0, []byte{19}, []byte("OpusHead\x01\x01\x38\x01\x80\xbb\x00\x00\x00\x00\x00")), CodecOpus},
		{"vorbis", encodePage(BOS, 0, 1, 0, []byte{7}, []byte("\x01vorbis")), CodecVorbis},
		{"flac", encodePage(BOS, 0, 1, 0, []byte{5}, []byte("\x7fFLAC")), CodecUnknown},
		{"garbage", []byte("not an ogg stream"), CodecUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCodec(tt.data); got != tt.want {
				t.Errorf("DetectCodec = %q, want %q", got, tt.want)
			}
		})
	}
}
