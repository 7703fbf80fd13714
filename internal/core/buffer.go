package core

// Buffer is the fixed-capacity output buffer shared by every layer of one
// encode chain. Packets are assembled from the innermost layer outward
// because outer checksums and lengths depend on inner layers being final,
// so the committed region grows backward: each Allocate prepends room for
// one more header in front of everything written so far. No reallocation,
// no copying between layers.
//
// A Buffer is exclusively owned by one in-flight encode chain; Allocate
// calls must never race.
type Buffer struct {
	buf []byte
	end uint32 // bytes committed so far
}

// NewBuffer returns an empty buffer over a fresh region of the given
// capacity.
func NewBuffer(capacity uint32) *Buffer {
	return &Buffer{buf: make([]byte, capacity)}
}

// Size returns the number of bytes committed so far.
func (b *Buffer) Size() uint32 { return b.end }

// Allocate commits n more bytes in front of the committed region, moving
// the write cursor back by n. It fails without side effect when the request
// exceeds the remaining capacity. Callers must Allocate before writing and
// must not write more than n bytes into the just-allocated region.
func (b *Buffer) Allocate(n uint32) bool {
	if n > uint32(len(b.buf))-b.end {
		return false
	}
	b.end += n
	return true
}

// Base returns the committed region, starting at the write cursor. After a
// successful Allocate(n) the first n bytes of Base are the caller's region
// to fill with this layer's header.
func (b *Buffer) Base() []byte {
	return b.buf[uint32(len(b.buf))-b.end:]
}

// Clear restores the buffer to empty, re-deriving the write cursor from the
// fixed base and original capacity. Called once per packet at the start of
// an encode chain.
func (b *Buffer) Clear() { b.end = 0 }
