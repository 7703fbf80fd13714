// Package icmp6 implements the ICMPv6 codec.
package icmp6

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 4

	protoICMPv6 = 58
)

type Codec struct {
	core.BaseCodec
	verifyChecksum bool
}

func New(verifyChecksum bool) *Codec {
	return &Codec{
		BaseCodec:      core.NewBaseCodec("icmp6"),
		verifyChecksum: verifyChecksum,
	}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{protoICMPv6}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}
	data := raw.Data

	// ICMPv6 checksums over a pseudo-header, unlike v4
	if c.verifyChecksum && pkt.IP.Valid() && pkt.IP.Version() == 6 {
		if csum.TCPUDP(pkt.IP.Src(), pkt.IP.Dst(), protoICMPv6, data[:raw.Len]) != 0 {
			pkt.SetDecodeFlag(core.DecodeErrCksumICMP | core.DecodeErrCksumAny)
		}
	}

	cd.LyrLen = headerLen
	cd.ProtoBits |= core.ProtoBitICMP

	pkt.ICMP = &core.ICMPHdr{
		Type:     data[0],
		Code:     data[1],
		Checksum: binary.BigEndian.Uint16(data[2:4]),
	}
	pkt.SetPktType(core.PktTypeICMP6)
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if !buf.Allocate(headerLen) {
		return false
	}
	out := buf.Base()[:headerLen]

	copy(out, rawIn[:headerLen])
	binary.BigEndian.PutUint16(out[2:4], 0)
	if enc.IP != nil && enc.IP.Valid() {
		src, dst := enc.IP.Src(), enc.IP.Dst()
		if enc.Flags.Reverse() {
			src, dst = dst, src
		}
		binary.BigEndian.PutUint16(out[2:4], csum.TCPUDP(src, dst, protoICMPv6, buf.Base()))
	}

	enc.NextProto = protoICMPv6
	return true
}
