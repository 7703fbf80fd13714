// Package ipv4 implements the IPv4 codec: option validation, fragment and
// TTL flagging, checksum verification flagging, and response encoding.
package ipv4

import (
	"encoding/binary"
	"math/rand"
	"net/netip"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

const (
	minHeaderLen = 20

	etherTypeIPv4 = 0x0800
	protoIPIP     = 4 // IP-in-IP tunneling

	flagDF uint16 = 0x4000
	flagMF uint16 = 0x2000

	// option kinds the downstream alert logic cares about
	optEOL    = 0x00
	optNOP    = 0x01
	optRR     = 0x07
	optRtrAlt = 0x94
)

type Codec struct {
	core.BaseCodec
	verifyChecksum bool
}

func New(verifyChecksum bool) *Codec {
	return &Codec{
		BaseCodec:      core.NewBaseCodec("ipv4"),
		verifyChecksum: verifyChecksum,
	}
}

func (c *Codec) ProtocolIDs() []uint16 {
	// selected by the ethertype at the link layer and by the IP-in-IP
	// protocol number when tunneled
	return []uint16{etherTypeIPv4, protoIPIP}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < minHeaderLen {
		return false
	}
	data := raw.Data

	if data[0]>>4 != 4 {
		return false
	}
	hlen := uint16(data[0]&0x0F) * 4
	if hlen < minHeaderLen || uint32(hlen) > raw.Len {
		return false
	}

	totalLen := binary.BigEndian.Uint16(data[2:4])
	if totalLen < hlen {
		return false
	}

	if c.verifyChecksum && csum.Checksum(data[:hlen]) != 0 {
		pkt.SetDecodeFlag(core.DecodeErrCksumIP | core.DecodeErrCksumAny)
	}

	ttl := data[8]
	if ttl == 0 {
		pkt.SetDecodeFlag(core.DecodeErrBadTTL)
	}

	fragField := binary.BigEndian.Uint16(data[6:8])
	fragOffset := fragField & 0x1FFF
	if fragField&flagDF != 0 {
		cd.Flags |= core.FlagDF
	}
	if fragField&flagMF != 0 {
		pkt.SetDecodeFlag(core.DecodeMF)
	}
	if fragField&flagMF != 0 || fragOffset != 0 {
		pkt.SetDecodeFlag(core.DecodeFrag)
	}

	src, _ := netip.AddrFromSlice(data[12:16])
	dst, _ := netip.AddrFromSlice(data[16:20])

	proto := data[9]
	validLen := hlen
	if hlen > minHeaderLen {
		validOpts := scanOptions(data[minHeaderLen:hlen], cd)
		validLen = minHeaderLen + validOpts
		cd.InvalidBytes = hlen - validLen
	}

	cd.LyrLen = validLen
	cd.IPLayerCnt++
	cd.ProtoBits |= core.ProtoBitIP

	pkt.IP.Set(4, data[:hlen], src, dst, ttl, proto, hlen, totalLen-hlen)
	pkt.SetPktType(core.PktTypeIP)

	// the payload of a non-leading fragment is not a decodable header
	if fragOffset == 0 {
		cd.NextProtID = uint16(proto)
	}
	return true
}

// scanOptions walks the options region, flagging the kinds downstream
// alert logic needs and returning the number of well-formed option bytes.
func scanOptions(opts []byte, cd *core.CodecData) uint16 {
	i := 0
	for i < len(opts) {
		kind := opts[i]
		switch kind {
		case optEOL:
			return uint16(len(opts))
		case optNOP:
			i++
			continue
		}

		if i+1 >= len(opts) {
			return uint16(i)
		}
		olen := int(opts[i+1])
		if olen < 2 || i+olen > len(opts) {
			return uint16(i)
		}
		switch kind {
		case optRR:
			cd.Flags |= core.FlagIPOptRRSeen
		case optRtrAlt:
			cd.Flags |= core.FlagIPOptRtrAlt
		}
		if olen == 3 {
			cd.Flags |= core.FlagIPOptLenThree
		}
		i += olen
	}
	return uint16(i)
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	// responses never carry the original options
	if !buf.Allocate(minHeaderLen) {
		return false
	}
	out := buf.Base()[:minHeaderLen]

	out[0] = 0x45 // version 4, 20-byte header
	out[1] = 0    // TOS
	binary.BigEndian.PutUint16(out[2:4], uint16(buf.Size()))

	if enc.Flags&core.EncFlagID != 0 {
		binary.BigEndian.PutUint16(out[4:6], uint16(rand.Uint32()))
	} else {
		copy(out[4:6], rawIn[4:6])
	}
	binary.BigEndian.PutUint16(out[6:8], 0) // no fragmentation

	out[8] = enc.GetTTL(rawIn[8])
	if enc.NextProtoSet() {
		out[9] = enc.NextProto
	} else {
		out[9] = rawIn[9]
	}

	if enc.Flags.Forward() {
		copy(out[12:20], rawIn[12:20])
	} else {
		copy(out[12:16], rawIn[16:20])
		copy(out[16:20], rawIn[12:16])
	}

	binary.BigEndian.PutUint16(out[10:12], 0)
	binary.BigEndian.PutUint16(out[10:12], csum.Checksum(out))

	enc.NextProto = protoIPIP
	enc.NextEthertype = etherTypeIPv4
	return true
}

func (c *Codec) Update(p *core.Packet, lyr *core.Layer, length *uint32) bool {
	hdr := p.Raw[lyr.Start : lyr.Start+uint32(lyr.Length)]
	*length += uint32(lyr.Length)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(*length))
	binary.BigEndian.PutUint16(hdr[10:12], 0)
	binary.BigEndian.PutUint16(hdr[10:12], csum.Checksum(hdr))
	return true
}
