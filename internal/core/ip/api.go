// Package ip provides the per-packet IP metadata accessor shared by the
// decode and encode paths. The innermost decoded IP layer wins, so after a
// tunneled packet is fully decoded the accessor describes the inner header.
package ip

import "net/netip"

// API carries the IP fields the rest of the pipeline needs without walking
// raw bytes again: pseudo-header material for checksumming encoders and
// addressing for the accumulated packet state.
type API struct {
	src netip.Addr
	dst netip.Addr
	hdr []byte // raw bytes of the innermost IP header

	version    uint8
	ttl        uint8
	proto      uint8 // IPv4 protocol / IPv6 next header of the innermost header
	hdrLen     uint16
	payloadLen uint16
}

// Set records the innermost IP header decoded so far, replacing whatever an
// outer layer stored before.
func (a *API) Set(version uint8, hdr []byte, src, dst netip.Addr, ttl, proto uint8, hdrLen, payloadLen uint16) {
	a.version = version
	a.hdr = hdr
	a.src = src
	a.dst = dst
	a.ttl = ttl
	a.proto = proto
	a.hdrLen = hdrLen
	a.payloadLen = payloadLen
}

// Reset clears the accessor ahead of a new packet's decode.
func (a *API) Reset() {
	*a = API{}
}

// Valid reports whether any IP layer has been decoded into the accessor.
func (a *API) Valid() bool { return a.version != 0 }

func (a *API) Version() uint8     { return a.version }
func (a *API) Src() netip.Addr    { return a.src }
func (a *API) Dst() netip.Addr    { return a.dst }
func (a *API) TTL() uint8         { return a.ttl }
func (a *API) Proto() uint8       { return a.proto }
func (a *API) HdrLen() uint16     { return a.hdrLen }
func (a *API) PayloadLen() uint16 { return a.payloadLen }
func (a *API) RawHdr() []byte     { return a.hdr }
