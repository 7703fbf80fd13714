package core

import (
	"net/netip"
	"testing"
)

func TestPktTypeRoundTrip(t *testing.T) {
	var p PktData

	types := []PktType{
		PktTypeUnknown, PktTypeIP, PktTypeTCP, PktTypeUDP,
		PktTypeICMP4, PktTypeICMP6, PktTypeARP,
	}

	// decode flags above bit 2 must survive every type change
	p.SetDecodeFlag(DecodeErrCksumTCP | DecodeFrag)

	for _, want := range types {
		p.SetPktType(want)
		if got := p.PktType(); got != want {
			t.Errorf("PktType() = %v after SetPktType(%v)", got, want)
		}
		if !p.HasDecodeFlag(DecodeErrCksumTCP) || !p.HasDecodeFlag(DecodeFrag) {
			t.Errorf("SetPktType(%v) disturbed decode flags", want)
		}
	}
}

func TestSetDecodeFlagKeepsType(t *testing.T) {
	var p PktData
	p.SetPktType(PktTypeUDP)

	// a flag value overlapping the type mask must not corrupt the type
	p.SetDecodeFlag(DecodeErrBadTTL | 0x0003)
	if p.PktType() != PktTypeUDP {
		t.Errorf("PktType() = %v after SetDecodeFlag, want udp", p.PktType())
	}
	if !p.HasDecodeFlag(DecodeErrBadTTL) {
		t.Error("DecodeErrBadTTL not raised")
	}
}

func TestPktDataReset(t *testing.T) {
	p := PktData{
		TCP:  &TCPHdr{SrcPort: 1},
		UDP:  &UDPHdr{SrcPort: 2},
		ICMP: &ICMPHdr{Type: 3},
		Sp:   1234,
		Dp:   5678,
	}
	p.SetPktType(PktTypeTCP)
	p.SetDecodeFlag(DecodeErrAny)
	p.IP.Set(4, []byte{0x45}, netip.MustParseAddr("10.0.0.1"),
		netip.MustParseAddr("10.0.0.2"), 64, 6, 20, 40)

	p.Reset()

	if p.TCP != nil || p.UDP != nil || p.ICMP != nil {
		t.Error("Reset left header references")
	}
	if p.Sp != 0 || p.Dp != 0 {
		t.Error("Reset left ports")
	}
	if p.PktType() != PktTypeUnknown || p.DecodeFlags() != 0 {
		t.Errorf("Reset left packed field: type=%v flags=0x%04x", p.PktType(), p.DecodeFlags())
	}
	if p.IP.Valid() {
		t.Error("Reset left the IP accessor valid")
	}
}
