package core

import "firestige.xyz/stratum/internal/core/ip"

// EncodeFlags is the 64-bit flag set shared by one encode chain. The high
// bits carry structural markers and the low 32 bits carry a sequence or
// acknowledgment adjustment consumed by the TCP codec. The layout is a
// stable bit-for-bit contract between the dispatcher and every codec.
type EncodeFlags uint64

const (
	EncFlagFwd    EncodeFlags = 0x8000000000000000 // send in the forward direction
	EncFlagSeq    EncodeFlags = 0x4000000000000000 // value bits carry a seq adjustment
	EncFlagID     EncodeFlags = 0x2000000000000000 // use a randomized IP ID
	EncFlagNet    EncodeFlags = 0x1000000000000000 // stop after the innermost network layer
	EncFlagDef    EncodeFlags = 0x0800000000000000 // stop before ip4 options or the ip6 frag header
	EncFlagRaw    EncodeFlags = 0x0400000000000000 // raw IP, skip the outer ethernet header
	EncFlagPay    EncodeFlags = 0x0200000000000000 // a TCP payload is attached
	EncFlagPsh    EncodeFlags = 0x0100000000000000 // TCP should set PUSH
	EncFlagFin    EncodeFlags = 0x0080000000000000 // TCP should set FIN
	EncFlagTTL    EncodeFlags = 0x0040000000000000 // use the TTL override
	EncFlagInline EncodeFlags = 0x0020000000000000 // inline response path
	EncFlagVal    EncodeFlags = 0x00000000FFFFFFFF // seq/ack adjustment value bits
)

// Forward reports whether the chain encodes along the original packet's
// path rather than as a reverse-path synthetic response.
func (f EncodeFlags) Forward() bool { return f&EncFlagFwd != 0 }

// Reverse reports the opposite of Forward.
func (f EncodeFlags) Reverse() bool { return !f.Forward() }

// Value extracts the seq/ack adjustment carried in the low 32 bits.
func (f EncodeFlags) Value() uint32 { return uint32(f & EncFlagVal) }

// ProtoUnset is the sentinel for EncodeState.NextProto.
const ProtoUnset uint8 = 0xFF

// EncodeState carries one layer's encode parameters. The dispatcher builds
// a fresh EncodeState per call; Flags, DSize and TTL are fixed for the
// whole chain, while NextProto and NextEthertype are stamped by each layer
// for the layer that will encode it next, outer-wise, and carried forward.
type EncodeState struct {
	IP    *ip.API // read-only; pseudo-header material for checksums
	Flags EncodeFlags
	DSize uint16 // declared payload size

	NextEthertype uint16 // 0 means unset
	NextProto     uint8  // ProtoUnset means unset
	TTL           uint8  // override, honored only with EncFlagTTL
}

// NewEncodeState builds the state for one layer's encode call.
func NewEncodeState(api *ip.API, flags EncodeFlags, proto uint8, ttl uint8, dsize uint16) *EncodeState {
	return &EncodeState{
		IP:        api,
		Flags:     flags,
		DSize:     dsize,
		NextProto: proto,
		TTL:       ttl,
	}
}

// NextProtoSet reports whether the inner layer stamped a protocol id for
// this layer to carry.
func (e *EncodeState) NextProtoSet() bool { return e.NextProto != ProtoUnset }

// EthertypeSet reports whether the inner layer stamped an ethertype.
func (e *EncodeState) EthertypeSet() bool { return e.NextEthertype != 0 }

// GetTTL computes the time-to-live to stamp on a layer. Forward traffic
// preserves the original hop count unless an override is set. Reverse
// traffic mirrors the original path as MaxTTL-lyrTTL, or takes the
// override; either way the result is clamped up to MinTTL.
func (e *EncodeState) GetTTL(lyrTTL uint8) uint8 {
	if e.Flags.Forward() {
		if e.Flags&EncFlagTTL != 0 {
			return e.TTL
		}
		return lyrTTL
	}

	ttl := MaxTTL - lyrTTL
	if e.Flags&EncFlagTTL != 0 {
		ttl = e.TTL
	}
	if ttl < MinTTL {
		ttl = MinTTL
	}
	return ttl
}
