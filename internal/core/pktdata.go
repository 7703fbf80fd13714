package core

import "firestige.xyz/stratum/internal/core/ip"

// PktType identifies the innermost classified protocol of a packet. It
// lives in the low three bits of PktData's packed flags field; the zero
// value is deliberately "unknown" so a reset field classifies as nothing.
type PktType uint8

const (
	PktTypeUnknown PktType = iota
	PktTypeIP
	PktTypeTCP
	PktTypeUDP
	PktTypeICMP4
	PktTypeICMP6
	PktTypeARP
	PktTypeReserved
)

func (t PktType) String() string {
	switch t {
	case PktTypeIP:
		return "ip"
	case PktTypeTCP:
		return "tcp"
	case PktTypeUDP:
		return "udp"
	case PktTypeICMP4:
		return "icmp4"
	case PktTypeICMP6:
		return "icmp6"
	case PktTypeARP:
		return "arp"
	default:
		return "unknown"
	}
}

const pktTypeMask uint16 = 0x0007

// Decode-error and informational bits sharing PktData's packed field with
// the packet type. Checksum and TTL anomalies are recorded here instead of
// failing the decode.
const (
	DecodeErrCksumIP   uint16 = 0x0008
	DecodeErrCksumTCP  uint16 = 0x0010
	DecodeErrCksumUDP  uint16 = 0x0020
	DecodeErrCksumICMP uint16 = 0x0040
	DecodeErrCksumAny  uint16 = 0x0080
	DecodeErrBadTTL    uint16 = 0x0100

	DecodeErrAny = DecodeErrCksumIP | DecodeErrCksumTCP | DecodeErrCksumUDP |
		DecodeErrCksumICMP | DecodeErrCksumAny | DecodeErrBadTTL

	DecodePktTrust uint16 = 0x0200 // downstream may whitelist this packet
	DecodeFrag     uint16 = 0x0400 // fragmented packet
	DecodeMF       uint16 = 0x0800 // more-fragments bit was set
)

// PktData is the per-packet accumulated decode result handed to the rest
// of the pipeline: convenience references into the packet's transport
// headers (at most one non-nil), the ports, and the packed type/flags
// field. Owned by the dispatcher for one packet's lifetime.
type PktData struct {
	TCP  *TCPHdr
	UDP  *UDPHdr
	ICMP *ICMPHdr

	Sp uint16 // source port
	Dp uint16 // destination port

	flags uint16 // low 3 bits: PktType; remainder: DecodeXxx bits

	IP ip.API
}

// SetPktType stores t in the low bits of the packed field with a
// read-modify-write, leaving every decode flag above the mask untouched.
func (p *PktData) SetPktType(t PktType) {
	p.flags = p.flags&^pktTypeMask | uint16(t)&pktTypeMask
}

// PktType reads the packet type out of the packed field.
func (p *PktData) PktType() PktType {
	return PktType(p.flags & pktTypeMask)
}

// SetDecodeFlag raises decode flags without disturbing the packet type.
func (p *PktData) SetDecodeFlag(f uint16) {
	p.flags |= f &^ pktTypeMask
}

// HasDecodeFlag reports whether any of the given flags are raised.
func (p *PktData) HasDecodeFlag(f uint16) bool {
	return p.flags&f&^pktTypeMask != 0
}

// DecodeFlags returns the raised decode flags, packet type excluded.
func (p *PktData) DecodeFlags() uint16 {
	return p.flags &^ pktTypeMask
}

// Reset clears the convenience references, ports and the packed field,
// then separately resets the nested IP accessor, which keeps state of its
// own beyond the flat fields.
func (p *PktData) Reset() {
	p.TCP = nil
	p.UDP = nil
	p.ICMP = nil
	p.Sp = 0
	p.Dp = 0
	p.flags = 0
	p.IP.Reset()
}
