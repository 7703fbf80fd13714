package icmp6

import (
	"encoding/binary"
	"net/netip"
	"testing"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

func ipMeta(pkt *core.PktData, payloadLen uint16) {
	pkt.IP.Set(6, nil,
		netip.MustParseAddr("2001:db8::1"), netip.MustParseAddr("2001:db8::2"),
		64, 58, 40, payloadLen)
}

// echo builds an echo request checksummed over the pseudo-header.
func echo(pkt *core.PktData, payload []byte) []byte {
	data := []byte{
		0x80, 0x00, // echo request, code 0
		0x00, 0x00, // checksum
	}
	data = append(data, payload...)
	ipMeta(pkt, uint16(len(data)))
	binary.BigEndian.PutUint16(data[2:4],
		csum.TCPUDP(pkt.IP.Src(), pkt.IP.Dst(), 58, data))
	return data
}

func TestDecodeICMP6(t *testing.T) {
	var pkt core.PktData
	data := echo(&pkt, []byte{0x12, 0x34, 0x00, 0x01})

	cd := core.NewCodecData(core.ProtoFinished)
	if !New(true).Decode(core.RawData{Data: data, Len: uint32(len(data))}, &cd, &pkt) {
		t.Fatal("Decode failed on a valid echo request")
	}

	if pkt.ICMP == nil {
		t.Fatal("ICMP reference not set")
	}
	if pkt.ICMP.Type != 0x80 {
		t.Errorf("type = 0x%02x, want echo request", pkt.ICMP.Type)
	}
	if pkt.PktType() != core.PktTypeICMP6 {
		t.Errorf("PktType = %v, want icmp6", pkt.PktType())
	}
	if cd.LyrLen != 4 {
		t.Errorf("LyrLen = %d, want 4", cd.LyrLen)
	}
	if cd.ProtoBits&core.ProtoBitICMP == 0 {
		t.Error("ICMP presence bit not set")
	}
	if pkt.DecodeFlags() != 0 {
		t.Errorf("decode flags = 0x%04x on a clean message", pkt.DecodeFlags())
	}
}

func TestDecodeICMP6BadChecksum(t *testing.T) {
	// the checksum is mandatory and covers the pseudo-header
	data := []byte{0x80, 0x00, 0x00, 0x00, 0x12, 0x34, 0x00, 0x01}
	var pkt core.PktData
	ipMeta(&pkt, uint16(len(data)))

	cd := core.NewCodecData(core.ProtoFinished)
	if !New(true).Decode(core.RawData{Data: data, Len: uint32(len(data))}, &cd, &pkt) {
		t.Fatal("checksum anomalies must be flagged, not fatal")
	}
	if !pkt.HasDecodeFlag(core.DecodeErrCksumICMP) {
		t.Error("DecodeErrCksumICMP not raised")
	}
}

func TestEncodeICMP6(t *testing.T) {
	var pkt core.PktData
	orig := echo(&pkt, nil)

	buf := core.NewBuffer(64)
	enc := core.NewEncodeState(&pkt.IP, 0, core.ProtoUnset, 0, 0) // reverse
	if !New(true).Encode(orig, 4, enc, buf) {
		t.Fatal("Encode failed")
	}
	out := buf.Base()[:4]

	// the checksum verifies against the reversed addresses
	if csum.TCPUDP(pkt.IP.Dst(), pkt.IP.Src(), 58, out) != 0 {
		t.Error("encoded checksum does not verify")
	}
	if enc.NextProto != 58 {
		t.Errorf("NextProto = %d, want 58", enc.NextProto)
	}
}
