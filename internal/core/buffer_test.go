package core

import (
	"bytes"
	"testing"
)

func TestBufferAllocate(t *testing.T) {
	buf := NewBuffer(64)

	if buf.Size() != 0 {
		t.Fatalf("new buffer size = %d, want 0", buf.Size())
	}

	if !buf.Allocate(20) {
		t.Fatal("Allocate(20) failed with 64 bytes free")
	}
	if buf.Size() != 20 {
		t.Errorf("size = %d after Allocate(20), want 20", buf.Size())
	}
	if len(buf.Base()) != 20 {
		t.Errorf("Base() length = %d, want 20", len(buf.Base()))
	}

	if !buf.Allocate(14) {
		t.Fatal("Allocate(14) failed with 44 bytes free")
	}
	if buf.Size() != 34 {
		t.Errorf("size = %d after second allocate, want 34", buf.Size())
	}
}

func TestBufferAllocateExhausted(t *testing.T) {
	buf := NewBuffer(32)
	if !buf.Allocate(30) {
		t.Fatal("Allocate(30) failed with 32 bytes free")
	}

	// over capacity: must fail with no side effect
	if buf.Allocate(3) {
		t.Fatal("Allocate(3) succeeded with 2 bytes free")
	}
	if buf.Size() != 30 {
		t.Errorf("failed allocate changed size to %d, want 30", buf.Size())
	}

	// exactly the remaining capacity still fits
	if !buf.Allocate(2) {
		t.Fatal("Allocate(2) failed with 2 bytes free")
	}
	if buf.Allocate(1) {
		t.Fatal("Allocate(1) succeeded on a full buffer")
	}
}

func TestBufferPrepends(t *testing.T) {
	buf := NewBuffer(16)

	buf.Allocate(4)
	copy(buf.Base()[:4], []byte("tcp-"))
	buf.Allocate(3)
	copy(buf.Base()[:3], []byte("ip-"))

	// the second layer lands in front of the first
	if !bytes.Equal(buf.Base(), []byte("ip-tcp-")) {
		t.Errorf("Base() = %q, want %q", buf.Base(), "ip-tcp-")
	}
}

func TestBufferClear(t *testing.T) {
	buf := NewBuffer(16)
	buf.Allocate(10)
	copy(buf.Base()[:10], []byte("0123456789"))

	buf.Clear()
	if buf.Size() != 0 {
		t.Fatalf("size = %d after Clear, want 0", buf.Size())
	}

	// the cursor addressing starts over
	buf.Allocate(2)
	copy(buf.Base()[:2], []byte("ok"))
	if buf.Size() != 2 || !bytes.Equal(buf.Base(), []byte("ok")) {
		t.Errorf("after Clear+Allocate: size=%d Base=%q", buf.Size(), buf.Base())
	}
}
