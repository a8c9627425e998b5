// Package ogg demultiplexes Ogg bitstreams (RFC 3533) into codec packets.
//
// The reader is pure Go: it parses page headers, verifies page checksums and
// reassembles packets from lacing values, including packets that span
// pages. Multiplexed and chained logical streams are supported; every packet
// carries the serial number of the stream it belongs to.
//
// Example:
//
//	for pkt, err := range ogg.ReadPackets(file) {
//	    if err != nil {
//	        return err
//	    }
//	    // process pkt.Data
//	}
package ogg
