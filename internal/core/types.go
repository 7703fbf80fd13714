package core

// The header value types below are filled in by the transport codecs and
// referenced from PktData. They mirror the wire layout but hold host-order
// values.

// TCP flag bits as they appear in the header's flags octet.
const (
	TCPFin uint8 = 0x01
	TCPSyn uint8 = 0x02
	TCPRst uint8 = 0x04
	TCPPsh uint8 = 0x08
	TCPAck uint8 = 0x10
	TCPUrg uint8 = 0x20
)

// TCPHdr is the decoded TCP header, options excluded.
type TCPHdr struct {
	SrcPort  uint16
	DstPort  uint16
	Seq      uint32
	Ack      uint32
	Offset   uint8 // header length in bytes, options included
	Flags    uint8
	Window   uint16
	Checksum uint16
	UrgPtr   uint16
}

// UDPHdr is the decoded UDP header.
type UDPHdr struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
}

// ICMPHdr is the decoded common ICMP header, v4 or v6.
type ICMPHdr struct {
	Type     uint8
	Code     uint8
	Checksum uint16
}

// Layer is one protocol header's worth of decoded bytes within a packet.
type Layer struct {
	ProtID       uint16 // protocol/ethertype id that selected the codec
	Start        uint32 // offset of this layer within Packet.Raw
	Length       uint16 // validated header length
	InvalidBytes uint16
	Codec        Codec
}

// Packet is one packet's complete decode result: the raw bytes, the layer
// list outermost-first, the accumulated per-packet state, and whatever
// bytes remain beyond the innermost decoded layer.
type Packet struct {
	Raw       []byte
	Layers    []Layer
	Data      PktData
	Payload   []byte
	ProtoBits uint16
}
