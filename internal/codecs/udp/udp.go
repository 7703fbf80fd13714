// Package udp implements the UDP codec.
package udp

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 8

	protoUDP = 17
)

type Codec struct {
	core.BaseCodec
	verifyChecksum bool
}

func New(verifyChecksum bool) *Codec {
	return &Codec{
		BaseCodec:      core.NewBaseCodec("udp"),
		verifyChecksum: verifyChecksum,
	}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{protoUDP}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}
	data := raw.Data

	hdr := &core.UDPHdr{
		SrcPort:  binary.BigEndian.Uint16(data[0:2]),
		DstPort:  binary.BigEndian.Uint16(data[2:4]),
		Length:   binary.BigEndian.Uint16(data[4:6]),
		Checksum: binary.BigEndian.Uint16(data[6:8]),
	}
	if hdr.Length < headerLen {
		return false
	}

	// a zero checksum means "not computed" over IPv4
	verify := c.verifyChecksum && pkt.IP.Valid() &&
		!(pkt.IP.Version() == 4 && hdr.Checksum == 0)
	if verify && csum.TCPUDP(pkt.IP.Src(), pkt.IP.Dst(), protoUDP, data[:raw.Len]) != 0 {
		pkt.SetDecodeFlag(core.DecodeErrCksumUDP | core.DecodeErrCksumAny)
	}

	cd.LyrLen = headerLen
	cd.ProtoBits |= core.ProtoBitUDP

	pkt.UDP = hdr
	pkt.Sp = hdr.SrcPort
	pkt.Dp = hdr.DstPort
	pkt.SetPktType(core.PktTypeUDP)
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if !buf.Allocate(headerLen) {
		return false
	}
	out := buf.Base()[:headerLen]

	if enc.Flags.Forward() {
		copy(out[0:4], rawIn[0:4])
	} else {
		copy(out[0:2], rawIn[2:4])
		copy(out[2:4], rawIn[0:2])
	}
	binary.BigEndian.PutUint16(out[4:6], uint16(buf.Size()))
	binary.BigEndian.PutUint16(out[6:8], 0)

	if enc.IP != nil && enc.IP.Valid() {
		src, dst := enc.IP.Src(), enc.IP.Dst()
		if enc.Flags.Reverse() {
			src, dst = dst, src
		}
		binary.BigEndian.PutUint16(out[6:8], csum.TCPUDP(src, dst, protoUDP, buf.Base()))
	}

	enc.NextProto = protoUDP
	return true
}

func (c *Codec) Update(p *core.Packet, lyr *core.Layer, length *uint32) bool {
	*length += uint32(lyr.Length)
	hdr := p.Raw[lyr.Start : lyr.Start+uint32(lyr.Length)]
	binary.BigEndian.PutUint16(hdr[4:6], uint16(*length))
	return true
}
