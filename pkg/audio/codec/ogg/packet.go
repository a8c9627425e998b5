package ogg

import (
	"bufio"
	"bytes"
	"io"
	"iter"
)

// Packet is a complete codec packet reassembled from one or more pages.
type Packet struct {
	// Data contains the raw codec payload.
	Data []byte

	// Granule is the granule position of the page on which the packet
	// completed.
	Granule int64

	// SerialNo identifies which logical stream this packet belongs to.
	SerialNo uint32

	// BOS indicates the packet completed on a beginning-of-stream page.
	BOS bool

	// EOS indicates the packet completed on an end-of-stream page.
	EOS bool
}

// ReadPackets reads packets from an Ogg bitstream. It returns an iterator
// that yields Packet and error pairs; iteration stops after the first error.
// An input with no pages at all yields io.ErrUnexpectedEOF.
// The caller is responsible for closing the underlying io.Reader.
func ReadPackets(r io.Reader) iter.Seq2[*Packet, error] {
	return func(yield func(*Packet, error) bool) {
		br := bufio.NewReader(r)
		pending := make(map[uint32][]byte)
		first := true

		for {
			page, err := ReadPage(br)
			if err == io.EOF {
				if first {
					yield(nil, io.ErrUnexpectedEOF)
				}
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			first = false

			serial := page.SerialNo
			if page.IsBOS() || !page.IsContinued() {
				// Partial data left by a lost page cannot be completed.
				delete(pending, serial)
			}

			buf := pending[serial]
			off := 0
			for _, lv := range page.Lacing {
				buf = append(buf, page.Body[off:off+int(lv)]...)
				off += int(lv)
				if lv == 255 {
					continue
				}
				pkt := &Packet{
					Data:     buf,
					Granule:  page.Granule,
					SerialNo: serial,
					BOS:      page.IsBOS(),
					EOS:      page.IsEOS(),
				}
				buf = nil
				if !yield(pkt, nil) {
					return
				}
			}
			if len(buf) > 0 {
				pending[serial] = buf
			} else {
				delete(pending, serial)
			}
		}
	}
}

// Codec identifies the codec carried by an Ogg stream.
type Codec string

const (
	CodecUnknown Codec = ""
	CodecOpus    Codec = "opus"
	CodecVorbis  Codec = "vorbis"
)

// DetectCodec inspects the first page of an Ogg bitstream and reports which
// codec it carries. It returns CodecUnknown for anything it cannot parse.
func DetectCodec(data []byte) Codec {
	page, err := ReadPage(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		return CodecUnknown
	}
	switch {
	case bytes.HasPrefix(page.Body, []byte("OpusHead")):
		return CodecOpus
	case bytes.HasPrefix(page.Body, []byte("\x01vorbis")):
		return CodecVorbis
	}
	return CodecUnknown
}
