// Package gre implements the GRE tunneling codec. GRE's payload type field
// is only a claim, so the layer marks itself as a save point and arms the
// unsure-encapsulation bit: if the claimed payload fails to decode, the
// dispatcher rolls back here instead of discarding the packet.
package gre

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/core"
)

const (
	baseHeaderLen = 4

	protoGRE = 47

	flagChecksum = 0x8000
	flagKey      = 0x2000
	flagSequence = 0x1000
	versionMask  = 0x0007
)

type Codec struct {
	core.BaseCodec
}

func New() *Codec {
	return &Codec{core.NewBaseCodec("gre")}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{protoGRE}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < baseHeaderLen {
		return false
	}
	data := raw.Data

	flags := binary.BigEndian.Uint16(data[0:2])
	if flags&versionMask != 0 {
		// only version 0 is decodable here
		return false
	}

	hlen := uint32(baseHeaderLen)
	if flags&flagChecksum != 0 {
		hlen += 4 // checksum + reserved
	}
	if flags&flagKey != 0 {
		hlen += 4
	}
	if flags&flagSequence != 0 {
		hlen += 4
	}
	if raw.Len < hlen {
		return false
	}

	cd.LyrLen = uint16(hlen)
	cd.NextProtID = binary.BigEndian.Uint16(data[2:4])
	cd.ProtoBits |= core.ProtoBitOther
	cd.Flags |= core.FlagEncapLayer
	return true
}
