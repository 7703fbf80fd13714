// Package ipv6 implements the IPv6 codec and its extension-header codec.
// The extension codec owns the shared bookkeeping fields of CodecData: the
// extension count, the current extension id, and the protocol the final
// transport checksum is computed against.
package ipv6

import (
	"encoding/binary"
	"net/netip"

	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 40

	etherTypeIPv6 = 0x86DD
	proto6in4     = 41 // IPv6 tunneled in IPv4

	// extension header protocol numbers
	protoHopByHop = 0
	protoRouting  = 43
	protoFragment = 44
	protoDstOpts  = 60

	fragExtLen = 8
)

type Codec struct {
	core.BaseCodec
}

func New() *Codec {
	return &Codec{core.NewBaseCodec("ipv6")}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{etherTypeIPv6, proto6in4}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}
	data := raw.Data

	if data[0]>>4 != 6 {
		return false
	}

	payloadLen := binary.BigEndian.Uint16(data[4:6])
	next := data[6]
	hopLimit := data[7]
	if hopLimit == 0 {
		pkt.SetDecodeFlag(core.DecodeErrBadTTL)
	}

	src, _ := netip.AddrFromSlice(data[8:24])
	dst, _ := netip.AddrFromSlice(data[24:40])

	cd.LyrLen = headerLen
	cd.NextProtID = uint16(next)
	cd.IPLayerCnt++
	cd.ProtoBits |= core.ProtoBitIP
	cd.IP6ExtensionCount = 0
	cd.CurrIP6Extension = 0
	cd.IP6CsumProto = next

	pkt.IP.Set(6, data[:headerLen], src, dst, hopLimit, next, headerLen, payloadLen)
	pkt.SetPktType(core.PktTypeIP)
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if !buf.Allocate(headerLen) {
		return false
	}
	out := buf.Base()[:headerLen]

	out[0] = 0x60 // version 6, no traffic class or flow label
	out[1], out[2], out[3] = 0, 0, 0
	binary.BigEndian.PutUint16(out[4:6], uint16(buf.Size())-headerLen)

	if enc.NextProtoSet() {
		out[6] = enc.NextProto
	} else {
		out[6] = rawIn[6]
	}
	out[7] = enc.GetTTL(rawIn[7])

	if enc.Flags.Forward() {
		copy(out[8:40], rawIn[8:40])
	} else {
		copy(out[8:24], rawIn[24:40])
		copy(out[24:40], rawIn[8:24])
	}

	enc.NextProto = proto6in4
	enc.NextEthertype = etherTypeIPv6
	return true
}

// ExtCodec decodes the hop-by-hop, routing, fragment and destination
// options extension headers. Anything the transport layer should see next
// comes out of the extension's own next-header field.
type ExtCodec struct {
	core.BaseCodec
}

func NewExt() *ExtCodec {
	return &ExtCodec{core.NewBaseCodec("ipv6_ext")}
}

func (c *ExtCodec) ProtocolIDs() []uint16 {
	return []uint16{protoHopByHop, protoRouting, protoFragment, protoDstOpts}
}

func (c *ExtCodec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	// the dispatcher only routes here after an IPv6 layer, but a corrupt
	// tunnel guess can land here without one
	if cd.IPLayerCnt == 0 || pkt.IP.Version() != 6 {
		return false
	}
	if raw.Len < 2 {
		return false
	}
	data := raw.Data

	// the previous layer's next-header value is the extension being decoded
	ext := cd.IP6CsumProto

	leading := true
	var extLen uint16
	if ext == protoFragment {
		// fixed 8-byte layout, no length octet
		extLen = fragExtLen
		if raw.Len < uint32(extLen) {
			return false
		}
		fragField := binary.BigEndian.Uint16(data[2:4])
		pkt.SetDecodeFlag(core.DecodeFrag)
		if fragField&0x0001 != 0 {
			pkt.SetDecodeFlag(core.DecodeMF)
		}
		// the 13-bit offset sits above the reserved and M bits
		leading = fragField&0xFFF8 == 0
	} else {
		extLen = (uint16(data[1]) + 1) * 8
		if uint32(extLen) > raw.Len {
			return false
		}
	}

	if ext == protoRouting {
		cd.Flags |= core.FlagRoutingSeen
	}

	cd.LyrLen = extLen
	cd.IP6ExtensionCount++
	cd.CurrIP6Extension = ext
	cd.IP6CsumProto = data[0]
	cd.ProtoBits |= core.ProtoBitIP6Ext

	// mid-datagram bytes of a non-leading fragment are not a decodable
	// header; the chain ends with the rest left opaque
	if leading {
		cd.NextProtID = uint16(data[0])
	}
	return true
}
