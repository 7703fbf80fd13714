// Package vlan implements the 802.1Q / 802.1ad tag codec. QinQ frames
// simply select this codec twice.
package vlan

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 4

	etherTypeVLAN = 0x8100
	etherTypeQinQ = 0x88A8
)

type Codec struct {
	core.BaseCodec
}

func New() *Codec {
	return &Codec{core.NewBaseCodec("vlan")}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{etherTypeVLAN, etherTypeQinQ}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}

	// TCI in the first two bytes, inner ethertype in the next two.
	cd.LyrLen = headerLen
	cd.NextProtID = binary.BigEndian.Uint16(raw.Data[2:4])
	cd.ProtoBits |= core.ProtoBitVLAN
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if !buf.Allocate(headerLen) {
		return false
	}

	out := buf.Base()[:headerLen]
	copy(out[0:2], rawIn[0:2])
	if enc.EthertypeSet() {
		binary.BigEndian.PutUint16(out[2:4], enc.NextEthertype)
	} else {
		copy(out[2:4], rawIn[2:4])
	}
	enc.NextEthertype = etherTypeVLAN
	return true
}
