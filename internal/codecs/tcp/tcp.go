// Package tcp implements the TCP codec. Decode fills the packet's TCP
// convenience reference and ports; encode builds the header of a synthetic
// response, which is how crafted resets leave the engine.
package tcp

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

const (
	minHeaderLen = 20
	encodedLen   = 20 // responses never carry options

	protoTCP = 6
)

type Codec struct {
	core.BaseCodec
	verifyChecksum bool
}

func New(verifyChecksum bool) *Codec {
	return &Codec{
		BaseCodec:      core.NewBaseCodec("tcp"),
		verifyChecksum: verifyChecksum,
	}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{protoTCP}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < minHeaderLen {
		return false
	}
	data := raw.Data

	offset := uint16(data[12]>>4) * 4
	if offset < minHeaderLen || uint32(offset) > raw.Len {
		return false
	}

	hdr := &core.TCPHdr{
		SrcPort:  binary.BigEndian.Uint16(data[0:2]),
		DstPort:  binary.BigEndian.Uint16(data[2:4]),
		Seq:      binary.BigEndian.Uint32(data[4:8]),
		Ack:      binary.BigEndian.Uint32(data[8:12]),
		Offset:   uint8(offset),
		Flags:    data[13],
		Window:   binary.BigEndian.Uint16(data[14:16]),
		Checksum: binary.BigEndian.Uint16(data[16:18]),
		UrgPtr:   binary.BigEndian.Uint16(data[18:20]),
	}

	if c.verifyChecksum && pkt.IP.Valid() {
		if csum.TCPUDP(pkt.IP.Src(), pkt.IP.Dst(), protoTCP, data[:raw.Len]) != 0 {
			pkt.SetDecodeFlag(core.DecodeErrCksumTCP | core.DecodeErrCksumAny)
		}
	}

	cd.LyrLen = offset
	cd.ProtoBits |= core.ProtoBitTCP

	pkt.TCP = hdr
	pkt.Sp = hdr.SrcPort
	pkt.Dp = hdr.DstPort
	pkt.SetPktType(core.PktTypeTCP)
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if !buf.Allocate(encodedLen) {
		return false
	}
	out := buf.Base()[:encodedLen]

	origSeq := binary.BigEndian.Uint32(rawIn[4:8])
	origAck := binary.BigEndian.Uint32(rawIn[8:12])
	origFlags := rawIn[13]

	if enc.Flags.Forward() {
		copy(out[0:4], rawIn[0:4])
		seq := origSeq
		if enc.Flags&core.EncFlagSeq != 0 {
			seq += enc.Flags.Value()
		}
		binary.BigEndian.PutUint32(out[4:8], seq)
		binary.BigEndian.PutUint32(out[8:12], origAck)

		flags := core.TCPAck
		if enc.Flags&core.EncFlagPsh != 0 {
			flags |= core.TCPPsh
		}
		if enc.Flags&core.EncFlagFin != 0 {
			flags |= core.TCPFin
		}
		out[13] = flags
	} else {
		copy(out[0:2], rawIn[2:4])
		copy(out[2:4], rawIn[0:2])
		binary.BigEndian.PutUint32(out[4:8], origAck)

		// the reset acknowledges everything the original segment carried
		ack := origSeq + uint32(enc.DSize)
		if origFlags&core.TCPSyn != 0 {
			ack++
		}
		if origFlags&core.TCPFin != 0 {
			ack++
		}
		binary.BigEndian.PutUint32(out[8:12], ack)
		out[13] = core.TCPRst | core.TCPAck
	}

	out[12] = (encodedLen / 4) << 4
	binary.BigEndian.PutUint16(out[14:16], 0) // window
	binary.BigEndian.PutUint16(out[18:20], 0) // urgent pointer
	binary.BigEndian.PutUint16(out[16:18], 0)

	if enc.IP != nil && enc.IP.Valid() {
		src, dst := enc.IP.Src(), enc.IP.Dst()
		if enc.Flags.Reverse() {
			src, dst = dst, src
		}
		seg := buf.Base() // this header plus any attached payload
		binary.BigEndian.PutUint16(out[16:18], csum.TCPUDP(src, dst, protoTCP, seg))
	}

	enc.NextProto = protoTCP
	return true
}

func (c *Codec) Update(p *core.Packet, lyr *core.Layer, length *uint32) bool {
	*length += uint32(lyr.Length)
	return true
}
