package eth

import (
	"bytes"
	"testing"

	"firestige.xyz/stratum/internal/core"
)

func TestDecodeEthernet(t *testing.T) {
	data := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, // dst MAC
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, // src MAC
		0x08, 0x00, // EtherType: IPv4
		0x45, 0x00, // payload (start of IP header)
	}

	c := New()
	cd := core.NewCodecData(core.ProtoFinished)
	var pkt core.PktData

	if !c.Decode(core.RawData{Data: data, Len: uint32(len(data))}, &cd, &pkt) {
		t.Fatal("Decode failed on a valid frame")
	}
	if cd.LyrLen != 14 {
		t.Errorf("LyrLen = %d, want 14", cd.LyrLen)
	}
	if cd.NextProtID != 0x0800 {
		t.Errorf("NextProtID = 0x%04x, want 0x0800", cd.NextProtID)
	}
	if cd.ProtoBits&core.ProtoBitEth == 0 {
		t.Error("ethernet presence bit not set")
	}
}

func TestDecodeEthernetTooShort(t *testing.T) {
	c := New()
	cd := core.NewCodecData(core.ProtoFinished)
	var pkt core.PktData

	data := []byte{0x00, 0x11, 0x22}
	if c.Decode(core.RawData{Data: data, Len: uint32(len(data))}, &cd, &pkt) {
		t.Fatal("Decode succeeded on a truncated frame")
	}
}

func TestEncodeEthernetReverse(t *testing.T) {
	orig := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, // dst MAC
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, // src MAC
		0x08, 0x00,
	}

	c := New()
	buf := core.NewBuffer(64)
	enc := core.NewEncodeState(nil, 0, core.ProtoUnset, 0, 0) // reverse

	if !c.Encode(orig, 14, enc, buf) {
		t.Fatal("Encode failed")
	}
	out := buf.Base()[:14]

	// MACs swapped for the response path
	if !bytes.Equal(out[0:6], orig[6:12]) || !bytes.Equal(out[6:12], orig[0:6]) {
		t.Errorf("MACs not swapped: % x", out[:12])
	}
	if !bytes.Equal(out[12:14], orig[12:14]) {
		t.Errorf("ethertype = % x, want copy of original", out[12:14])
	}
}

func TestEncodeEthernetRawSkips(t *testing.T) {
	c := New()
	buf := core.NewBuffer(64)
	enc := core.NewEncodeState(nil, core.EncFlagRaw, core.ProtoUnset, 0, 0)

	if !c.Encode(make([]byte, 14), 14, enc, buf) {
		t.Fatal("Encode failed under EncFlagRaw")
	}
	if buf.Size() != 0 {
		t.Errorf("raw-mode encode wrote %d bytes, want 0", buf.Size())
	}
}

func TestEncodeEthernetStampedEthertype(t *testing.T) {
	c := New()
	buf := core.NewBuffer(64)
	enc := core.NewEncodeState(nil, core.EncFlagFwd, core.ProtoUnset, 0, 0)
	enc.NextEthertype = 0x86DD // stamped by the inner layer

	orig := make([]byte, 14)
	orig[12], orig[13] = 0x08, 0x00

	if !c.Encode(orig, 14, enc, buf) {
		t.Fatal("Encode failed")
	}
	out := buf.Base()[:14]
	if out[12] != 0x86 || out[13] != 0xDD {
		t.Errorf("ethertype = % x, want stamped 86dd", out[12:14])
	}
}
