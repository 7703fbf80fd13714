package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"firestige.xyz/stratum/internal/core"
)

// Stats accumulates per-source counters. The hot-path counters are atomic;
// the rate bookkeeping behind Snapshot takes a lock.
type Stats struct {
	received atomic.Uint64
	dropped  atomic.Uint64

	tcp   atomic.Uint64
	udp   atomic.Uint64
	icmp  atomic.Uint64
	other atomic.Uint64

	mu           sync.Mutex
	lastReceived uint64
	lastTime     time.Time
}

// CountPacket records one decoded packet's classified type.
func (s *Stats) CountPacket(t core.PktType) {
	switch t {
	case core.PktTypeTCP:
		s.tcp.Add(1)
	case core.PktTypeUDP:
		s.udp.Add(1)
	case core.PktTypeICMP4, core.PktTypeICMP6:
		s.icmp.Add(1)
	default:
		s.other.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Received uint64
	Dropped  uint64

	TCP   uint64
	UDP   uint64
	ICMP  uint64
	Other uint64

	RatePerSec uint64
}

// Snapshot reads the counters and computes the receive rate since the
// previous call.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	received := s.received.Load()

	var rate uint64
	if !s.lastTime.IsZero() {
		if elapsed := now.Sub(s.lastTime).Seconds(); elapsed > 0 {
			rate = uint64(float64(received-s.lastReceived) / elapsed)
		}
	}
	s.lastReceived = received
	s.lastTime = now

	return Snapshot{
		Received:   received,
		Dropped:    s.dropped.Load(),
		TCP:        s.tcp.Load(),
		UDP:        s.udp.Load(),
		ICMP:       s.icmp.Load(),
		Other:      s.other.Load(),
		RatePerSec: rate,
	}
}
