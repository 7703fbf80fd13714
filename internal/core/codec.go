// Package core defines the shared state and contracts of the layered packet
// codec pipeline: the per-layer decode/encode handoff records, the
// backward-growing encode buffer, and the Codec contract every protocol
// implementation satisfies. The dispatch package drives these types through
// the layer loop; concrete protocol codecs live under internal/codecs.
package core

// TTL bounds for synthetic response packets. A reverse-direction packet must
// never advertise an implausibly short hop count.
const (
	MinTTL uint8 = 64
	MaxTTL uint8 = 255
)

// PktMax sizes the encode buffer so a reassembled packet can carry a full
// datagram at the innermost layer: ethernet header (14) + one VLAN tag (4) +
// ethernet MTU (1500) + maximum IP datagram (65535).
const PktMax uint32 = 14 + 4 + 1500 + 65535

// ProtoFinished is the next-protocol sentinel meaning "no further layer".
// Terminal codecs (TCP, UDP, ARP, ICMP) leave it in place.
const ProtoFinished uint16 = 0xFFFF

// RawData is an immutable view over the bytes still to be decoded at the
// current layer. It is owned by the dispatcher and borrowed by a codec for
// the duration of one Decode call; codecs must never read past Len.
type RawData struct {
	Data []byte
	Len  uint32
}

// Codec is the unit implementing decode and encode for exactly one protocol.
//
// Implementations must not retain mutable state across calls: everything a
// call needs is passed in, so one instance may serve packets on any number
// of goroutines. Embed BaseCodec to pick up the defaults for the operations
// a protocol does not care about.
type Codec interface {
	// Name returns the codec's registration name.
	Name() string

	// DataLinkTypes declares the libpcap link-layer types this codec roots,
	// and ProtocolIDs the protocol/ethertype identifiers that select it.
	// Both are registration-time queries; the defaults declare nothing.
	DataLinkTypes() []int
	ProtocolIDs() []uint16

	// Decode parses one layer out of raw. On success it must set
	// cd.NextProtID, cd.LyrLen and, when the tail of the layer is
	// malformed, cd.InvalidBytes. On failure the dispatcher either aborts
	// the packet or backs out to the last save layer, depending on the
	// FlagUnsureEncap state; failure is never fatal to the process.
	Decode(raw RawData, cd *CodecData, pkt *PktData) bool

	// Encode appends this layer's header to buf, which already holds every
	// inner layer. rawIn is the same data Decode saw; rawLen is the
	// validated length Decode produced, so Encode must not re-derive it.
	// Implementations must Allocate before writing and may only fail on
	// buffer exhaustion.
	Encode(rawIn []byte, rawLen uint16, enc *EncodeState, buf *Buffer) bool

	// Update recomputes the layer's length in place after the decoded
	// packet was structurally modified, accumulating into length.
	Update(p *Packet, lyr *Layer, length *uint32) bool

	// Format propagates layer metadata when a packet is duplicated.
	Format(flags EncodeFlags, orig, clone *Packet, lyr *Layer)
}

// BaseCodec carries the identifying name and the default no-op behaviour of
// the optional Codec operations. Decode is deliberately absent: every
// protocol must implement it.
type BaseCodec struct {
	name string
}

func NewBaseCodec(name string) BaseCodec { return BaseCodec{name: name} }

func (b BaseCodec) Name() string { return b.name }

func (BaseCodec) DataLinkTypes() []int { return nil }

func (BaseCodec) ProtocolIDs() []uint16 { return nil }

func (BaseCodec) Encode(_ []byte, _ uint16, _ *EncodeState, _ *Buffer) bool { return true }

func (BaseCodec) Update(_ *Packet, _ *Layer, _ *uint32) bool { return true }

func (BaseCodec) Format(_ EncodeFlags, _, _ *Packet, _ *Layer) {}
