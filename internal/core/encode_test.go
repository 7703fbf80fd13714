package core

import "testing"

func TestGetTTLForward(t *testing.T) {
	enc := NewEncodeState(nil, EncFlagFwd, ProtoUnset, 0, 0)

	// forward without override preserves the original path hint
	if got := enc.GetTTL(37); got != 37 {
		t.Errorf("forward GetTTL(37) = %d, want 37", got)
	}
	if got := enc.GetTTL(1); got != 1 {
		t.Errorf("forward GetTTL(1) = %d, want 1", got)
	}
}

func TestGetTTLForwardOverride(t *testing.T) {
	enc := NewEncodeState(nil, EncFlagFwd|EncFlagTTL, ProtoUnset, 13, 0)
	if got := enc.GetTTL(99); got != 13 {
		t.Errorf("forward override GetTTL(99) = %d, want 13", got)
	}
}

func TestGetTTLReverse(t *testing.T) {
	enc := NewEncodeState(nil, 0, ProtoUnset, 0, 0)

	// reverse mirrors the path: 255 - lyrTTL
	if got := enc.GetTTL(55); got != 200 {
		t.Errorf("reverse GetTTL(55) = %d, want 200", got)
	}
	// clamped up to 64 so a response never looks one hop away
	if got := enc.GetTTL(250); got != 64 {
		t.Errorf("reverse GetTTL(250) = %d, want 64", got)
	}
}

func TestGetTTLReverseOverride(t *testing.T) {
	enc := NewEncodeState(nil, EncFlagTTL, ProtoUnset, 10, 0)
	// reverse overrides are clamped too
	if got := enc.GetTTL(0); got != 64 {
		t.Errorf("reverse override GetTTL = %d, want clamped 64", got)
	}

	enc = NewEncodeState(nil, EncFlagTTL, ProtoUnset, 128, 0)
	if got := enc.GetTTL(0); got != 128 {
		t.Errorf("reverse override GetTTL = %d, want 128", got)
	}
}

func TestNextProtoSentinels(t *testing.T) {
	enc := NewEncodeState(nil, 0, ProtoUnset, 0, 0)
	if enc.NextProtoSet() {
		t.Error("NextProtoSet() true for the unset sentinel")
	}
	if enc.EthertypeSet() {
		t.Error("EthertypeSet() true for ethertype 0")
	}

	enc.NextProto = 6
	enc.NextEthertype = 0x0800
	if !enc.NextProtoSet() || !enc.EthertypeSet() {
		t.Error("sentinel accessors did not see assigned identifiers")
	}
}

func TestEncodeFlagsValue(t *testing.T) {
	f := EncFlagFwd | EncFlagSeq | EncodeFlags(0xDEADBEEF)
	if f.Value() != 0xDEADBEEF {
		t.Errorf("Value() = 0x%08x, want 0xDEADBEEF", f.Value())
	}
	if !f.Forward() || f.Reverse() {
		t.Error("direction accessors disagree with EncFlagFwd")
	}
}
