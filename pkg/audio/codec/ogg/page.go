package ogg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Page header type flags
const (
	// Continued indicates this page contains data from a packet continued from the previous page
	Continued = 0x01
	// BOS indicates beginning of stream
	BOS = 0x02
	// EOS indicates end of stream
	EOS = 0x04
)

const headerSize = 27

var capturePattern = []byte("OggS")

// Sentinel errors.
var (
	// ErrNotOgg is returned when a page does not start with the capture pattern.
	ErrNotOgg = errors.New("ogg: missing capture pattern")
	// ErrBadChecksum is returned when a page fails CRC verification.
	ErrBadChecksum = errors.New("ogg: page checksum mismatch")
	// ErrBadVersion is returned for unknown stream structure versions.
	ErrBadVersion = errors.New("ogg: unsupported stream structure version")
)

// Page is a single Ogg page.
type Page struct {
	HeaderType byte
	Granule    int64
	SerialNo   uint32
	Sequence   uint32
	Lacing     []byte
	Body       []byte
}

// IsBOS returns true if this is a beginning of stream page.
func (p *Page) IsBOS() bool { return p.HeaderType&BOS != 0 }

// IsEOS returns true if this is an end of stream page.
func (p *Page) IsEOS() bool { return p.HeaderType&EOS != 0 }

// IsContinued returns true if the first packet continues from the previous page.
func (p *Page) IsContinued() bool { return p.HeaderType&Continued != 0 }

// ReadPage reads the next page from r. It returns io.EOF when r is exhausted
// at a page boundary and io.ErrUnexpectedEOF for truncated pages.
func ReadPage(r *bufio.Reader) (*Page, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:4]); err != nil {
		return nil, err
	}
	if !bytes.Equal(hdr[:4], capturePattern) {
		return nil, ErrNotOgg
	}
	if _, err := io.ReadFull(r, hdr[4:]); err != nil {
		return nil, unexpected(err)
	}
	if hdr[4] != 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, hdr[4])
	}

	p := &Page{
		HeaderType: hdr[5],
		Granule:    int64(binary.LittleEndian.Uint64(hdr[6:14])),
		SerialNo:   binary.LittleEndian.Uint32(hdr[14:18]),
		Sequence:   binary.LittleEndian.Uint32(hdr[18:22]),
	}
	want := binary.LittleEndian.Uint32(hdr[22:26])

	p.Lacing = make([]byte, hdr[26])
	if _, err := io.ReadFull(r, p.Lacing); err != nil {
		return nil, unexpected(err)
	}
	bodyLen := 0
	for _, v := range p.Lacing {
		bodyLen += int(v)
	}
	p.Body = make([]byte, bodyLen)
	if _, err := io.ReadFull(r, p.Body); err != nil {
		return nil, unexpected(err)
	}

	// Checksum covers the header with the CRC field zeroed.
	hdr[22], hdr[23], hdr[24], hdr[25] = 0, 0, 0, 0
	crc := crcUpdate(0, hdr[:])
	crc = crcUpdate(crc, p.Lacing)
	crc = crcUpdate(crc, p.Body)
	if crc != want {
		return nil, fmt.Errorf("%w: page %d of stream %d", ErrBadChecksum, p.Sequence, p.SerialNo)
	}
	return p, nil
}

// crcSum returns the page checksum for an encoded page whose CRC field is
// zeroed.
func crcSum(page []byte) uint32 {
	return crcUpdate(0, page)
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
