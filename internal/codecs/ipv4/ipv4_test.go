package ipv4

import (
	"encoding/binary"
	"testing"

	"firestige.xyz/stratum/internal/codecs/csum"
	"firestige.xyz/stratum/internal/core"
)

// header returns a 20-byte IPv4 header with a valid checksum.
func header(t *testing.T, totalLen uint16, ttl, proto uint8) []byte {
	t.Helper()
	hdr := []byte{
		0x45, 0x00, 0x00, 0x00, // version/IHL, TOS, total length
		0x12, 0x34, 0x00, 0x00, // ID, flags/fragment offset
		ttl, proto, 0x00, 0x00, // TTL, protocol, checksum
		0x0A, 0x00, 0x00, 0x01, // src 10.0.0.1
		0x0A, 0x00, 0x00, 0x02, // dst 10.0.0.2
	}
	binary.BigEndian.PutUint16(hdr[2:4], totalLen)
	binary.BigEndian.PutUint16(hdr[10:12], csum.Checksum(hdr))
	return hdr
}

func decode(t *testing.T, c *Codec, data []byte) (core.CodecData, core.PktData, bool) {
	t.Helper()
	cd := core.NewCodecData(core.ProtoFinished)
	var pkt core.PktData
	ok := c.Decode(core.RawData{Data: data, Len: uint32(len(data))}, &cd, &pkt)
	return cd, pkt, ok
}

func TestDecodeIPv4(t *testing.T) {
	data := append(header(t, 40, 64, 6), make([]byte, 20)...)

	cd, pkt, ok := decode(t, New(true), data)
	if !ok {
		t.Fatal("Decode failed on a valid header")
	}
	if cd.LyrLen != 20 {
		t.Errorf("LyrLen = %d, want 20", cd.LyrLen)
	}
	if cd.NextProtID != 6 {
		t.Errorf("NextProtID = %d, want 6 (TCP)", cd.NextProtID)
	}
	if cd.IPLayerCnt != 1 {
		t.Errorf("IPLayerCnt = %d, want 1", cd.IPLayerCnt)
	}
	if pkt.PktType() != core.PktTypeIP {
		t.Errorf("PktType = %v, want ip", pkt.PktType())
	}
	if pkt.DecodeFlags() != 0 {
		t.Errorf("decode flags = 0x%04x on a clean header", pkt.DecodeFlags())
	}
	if pkt.IP.Src().String() != "10.0.0.1" || pkt.IP.Dst().String() != "10.0.0.2" {
		t.Errorf("addresses = %v -> %v", pkt.IP.Src(), pkt.IP.Dst())
	}
	if pkt.IP.PayloadLen() != 20 {
		t.Errorf("PayloadLen = %d, want 20", pkt.IP.PayloadLen())
	}
}

func TestDecodeIPv4BadChecksum(t *testing.T) {
	data := header(t, 20, 64, 17)
	data[10] ^= 0xFF

	_, pkt, ok := decode(t, New(true), data)
	if !ok {
		t.Fatal("checksum anomalies must be flagged, not fatal")
	}
	if !pkt.HasDecodeFlag(core.DecodeErrCksumIP) || !pkt.HasDecodeFlag(core.DecodeErrCksumAny) {
		t.Errorf("checksum flags not raised: 0x%04x", pkt.DecodeFlags())
	}

	// verification off: same packet, no flag
	_, pkt, ok = decode(t, New(false), data)
	if !ok || pkt.DecodeFlags() != 0 {
		t.Errorf("flags raised with verification disabled: 0x%04x", pkt.DecodeFlags())
	}
}

func TestDecodeIPv4ZeroTTL(t *testing.T) {
	_, pkt, ok := decode(t, New(true), header(t, 20, 0, 17))
	if !ok {
		t.Fatal("zero TTL must be flagged, not fatal")
	}
	if !pkt.HasDecodeFlag(core.DecodeErrBadTTL) {
		t.Error("DecodeErrBadTTL not raised")
	}
}

func TestDecodeIPv4Fragment(t *testing.T) {
	hdr := []byte{
		0x45, 0x00, 0x00, 0x1C,
		0x12, 0x34, 0x20, 0x08, // MF set, offset 8
		0x40, 0x11, 0x00, 0x00,
		0x0A, 0x00, 0x00, 0x01,
		0x0A, 0x00, 0x00, 0x02,
	}
	binary.BigEndian.PutUint16(hdr[10:12], csum.Checksum(hdr))

	cd, pkt, ok := decode(t, New(true), append(hdr, make([]byte, 8)...))
	if !ok {
		t.Fatal("Decode failed on a fragment")
	}
	if !pkt.HasDecodeFlag(core.DecodeFrag) || !pkt.HasDecodeFlag(core.DecodeMF) {
		t.Errorf("fragment flags = 0x%04x", pkt.DecodeFlags())
	}
	// a non-leading fragment's payload is not a decodable header
	if cd.NextProtID != core.ProtoFinished {
		t.Errorf("NextProtID = 0x%04x for a mid-stream fragment", cd.NextProtID)
	}
}

func TestDecodeIPv4DontFragment(t *testing.T) {
	hdr := []byte{
		0x45, 0x00, 0x00, 0x14,
		0x12, 0x34, 0x40, 0x00, // DF set
		0x40, 0x11, 0x00, 0x00,
		0x0A, 0x00, 0x00, 0x01,
		0x0A, 0x00, 0x00, 0x02,
	}
	binary.BigEndian.PutUint16(hdr[10:12], csum.Checksum(hdr))

	cd, _, ok := decode(t, New(true), hdr)
	if !ok {
		t.Fatal("Decode failed")
	}
	if cd.Flags&core.FlagDF == 0 {
		t.Error("FlagDF not set")
	}
}

func TestDecodeIPv4Options(t *testing.T) {
	// 24-byte header: record-route option then EOL padding
	hdr := []byte{
		0x46, 0x00, 0x00, 0x18, // IHL 6
		0x12, 0x34, 0x00, 0x00,
		0x40, 0x11, 0x00, 0x00,
		0x0A, 0x00, 0x00, 0x01,
		0x0A, 0x00, 0x00, 0x02,
		0x07, 0x03, 0x04, 0x00, // RR, len 3, pointer, EOL
	}
	binary.BigEndian.PutUint16(hdr[10:12], csum.Checksum(hdr))

	cd, _, ok := decode(t, New(true), hdr)
	if !ok {
		t.Fatal("Decode failed with options")
	}
	if cd.Flags&core.FlagIPOptRRSeen == 0 {
		t.Error("record-route flag not set")
	}
	if cd.Flags&core.FlagIPOptLenThree == 0 {
		t.Error("length-three flag not set")
	}
	if cd.LyrLen != 24 || cd.InvalidBytes != 0 {
		t.Errorf("LyrLen=%d InvalidBytes=%d, want 24/0", cd.LyrLen, cd.InvalidBytes)
	}
}

func TestDecodeIPv4MalformedOptions(t *testing.T) {
	// option claims 12 bytes but only 4 exist past the fixed header
	hdr := []byte{
		0x46, 0x00, 0x00, 0x18,
		0x12, 0x34, 0x00, 0x00,
		0x40, 0x11, 0x00, 0x00,
		0x0A, 0x00, 0x00, 0x01,
		0x0A, 0x00, 0x00, 0x02,
		0x83, 0x0C, 0x00, 0x00, // LSRR, bogus len 12
	}
	binary.BigEndian.PutUint16(hdr[10:12], csum.Checksum(hdr))

	cd, _, ok := decode(t, New(false), hdr)
	if !ok {
		t.Fatal("Decode failed; malformed options only shorten the valid region")
	}
	if cd.LyrLen != 20 || cd.InvalidBytes != 4 {
		t.Errorf("LyrLen=%d InvalidBytes=%d, want 20/4", cd.LyrLen, cd.InvalidBytes)
	}
}

func TestDecodeIPv4Rejects(t *testing.T) {
	c := New(true)

	short := []byte{0x45, 0x00}
	if _, _, ok := decode(t, c, short); ok {
		t.Error("Decode succeeded on a truncated header")
	}

	v6 := header(t, 20, 64, 6)
	v6[0] = 0x65 // version 6
	if _, _, ok := decode(t, c, v6); ok {
		t.Error("Decode succeeded on a version-6 header")
	}

	badIHL := header(t, 20, 64, 6)
	badIHL[0] = 0x43 // IHL below the minimum
	if _, _, ok := decode(t, c, badIHL); ok {
		t.Error("Decode succeeded with IHL < 5")
	}
}

func TestEncodeIPv4Reverse(t *testing.T) {
	orig := header(t, 48, 60, 6)

	buf := core.NewBuffer(64)
	buf.Allocate(20) // stand-in for the already-encoded TCP layer

	enc := core.NewEncodeState(nil, 0, 6, 0, 0) // reverse, TCP stamped by inner layer
	if !New(true).Encode(orig, 20, enc, buf) {
		t.Fatal("Encode failed")
	}
	out := buf.Base()[:20]

	// addresses swapped for the response
	if out[12] != 0x0A || out[15] != 0x02 || out[19] != 0x01 {
		t.Errorf("addresses not swapped: % x", out[12:20])
	}
	// reverse TTL: 255-60, above the floor
	if out[8] != 195 {
		t.Errorf("TTL = %d, want 195", out[8])
	}
	if out[9] != 6 {
		t.Errorf("protocol = %d, want stamped 6", out[9])
	}
	if got := binary.BigEndian.Uint16(out[2:4]); got != 40 {
		t.Errorf("total length = %d, want 40", got)
	}
	if csum.Checksum(out) != 0 {
		t.Error("encoded header checksum does not verify")
	}
	if enc.NextEthertype != 0x0800 {
		t.Errorf("NextEthertype = 0x%04x, want 0x0800", enc.NextEthertype)
	}
}

func TestEncodeIPv4BufferExhausted(t *testing.T) {
	buf := core.NewBuffer(16)
	enc := core.NewEncodeState(nil, 0, core.ProtoUnset, 0, 0)
	if New(true).Encode(header(t, 20, 64, 6), 20, enc, buf) {
		t.Fatal("Encode succeeded with 16 bytes of capacity")
	}
	if buf.Size() != 0 {
		t.Errorf("failed encode committed %d bytes", buf.Size())
	}
}
