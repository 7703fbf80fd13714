// Package csum implements the internet checksum (RFC 1071) used by the IP
// and transport codecs for verification flagging and response encoding.
package csum

import "net/netip"

func sum(b []byte, acc uint32) uint32 {
	for len(b) >= 2 {
		acc += uint32(b[0])<<8 | uint32(b[1])
		b = b[2:]
	}
	if len(b) == 1 {
		acc += uint32(b[0]) << 8
	}
	return acc
}

func fold(acc uint32) uint16 {
	for acc>>16 != 0 {
		acc = acc&0xFFFF + acc>>16
	}
	return ^uint16(acc)
}

// Checksum computes the internet checksum over b. Verifying a header that
// carries its own checksum yields 0.
func Checksum(b []byte) uint16 {
	return fold(sum(b, 0))
}

// TCPUDP computes the transport checksum over seg with the v4 or v6
// pseudo-header for the given addresses and protocol. seg covers the
// transport header and payload with the checksum field as it stands, so
// verification yields 0 and encoding is done with the field zeroed.
func TCPUDP(src, dst netip.Addr, proto uint8, seg []byte) uint16 {
	var acc uint32
	if src.Is4() {
		s, d := src.As4(), dst.As4()
		acc = sum(s[:], acc)
		acc = sum(d[:], acc)
	} else {
		s, d := src.As16(), dst.As16()
		acc = sum(s[:], acc)
		acc = sum(d[:], acc)
	}
	acc += uint32(proto)
	acc += uint32(len(seg))
	return fold(sum(seg, acc))
}
