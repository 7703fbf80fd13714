// Package icmp4 implements the ICMPv4 codec.
package icmp4

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 8 // type, code, checksum plus the rest-of-header word

	protoICMP = 1
)

type Codec struct {
	core.BaseCodec
	verifyChecksum bool
}

func New(verifyChecksum bool) *Codec {
	return &Codec{
		BaseCodec:      core.NewBaseCodec("icmp4"),
		verifyChecksum: verifyChecksum,
	}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{protoICMP}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}
	data := raw.Data

	// the checksum covers the whole message
	if c.verifyChecksum && csum.Checksum(data[:raw.Len]) != 0 {
		pkt.SetDecodeFlag(core.DecodeErrCksumICMP | core.DecodeErrCksumAny)
	}

	cd.LyrLen = headerLen
	cd.ProtoBits |= core.ProtoBitICMP

	pkt.ICMP = &core.ICMPHdr{
		Type:     data[0],
		Code:     data[1],
		Checksum: binary.BigEndian.Uint16(data[2:4]),
	}
	pkt.SetPktType(core.PktTypeICMP4)
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if !buf.Allocate(headerLen) {
		return false
	}
	out := buf.Base()[:headerLen]

	copy(out, rawIn[:headerLen])
	binary.BigEndian.PutUint16(out[2:4], 0)
	binary.BigEndian.PutUint16(out[2:4], csum.Checksum(buf.Base()))

	enc.NextProto = protoICMP
	return true
}
