// Package codecs wires the built-in protocol codecs into a dispatch
// registry.
package codecs

import (
	"firestige.xyz/stratum/internal/codecs/arp"
	"firestige.xyz/stratum/internal/codecs/eth"
	"firestige.xyz/stratum/internal/codecs/gre"
	"firestige.xyz/stratum/internal/codecs/icmp4"
	"firestige.xyz/stratum/internal/codecs/icmp6"
	"firestige.xyz/stratum/internal/codecs/ipv4"
	"firestige.xyz/stratum/internal/codecs/ipv6"
	"firestige.xyz/stratum/internal/codecs/tcp"
	"firestige.xyz/stratum/internal/codecs/udp"
	"firestige.xyz/stratum/internal/codecs/vlan"
	"firestige.xyz/stratum/internal/core"
	"firestige.xyz/stratum/internal/dispatch"
)

// Options toggles per-protocol checksum verification. Anomalies are only
// flagged, never fatal, so disabling a toggle just silences the flag.
type Options struct {
	ChecksumIP   bool
	ChecksumTCP  bool
	ChecksumUDP  bool
	ChecksumICMP bool
}

// DefaultOptions verifies every checksum.
func DefaultOptions() Options {
	return Options{ChecksumIP: true, ChecksumTCP: true, ChecksumUDP: true, ChecksumICMP: true}
}

// RegisterAll registers every built-in codec with r.
func RegisterAll(r *dispatch.Registry, opts Options) error {
	all := []core.Codec{
		eth.New(),
		vlan.New(),
		arp.New(),
		ipv4.New(opts.ChecksumIP),
		ipv6.New(),
		ipv6.NewExt(),
		tcp.New(opts.ChecksumTCP),
		udp.New(opts.ChecksumUDP),
		icmp4.New(opts.ChecksumICMP),
		icmp6.New(opts.ChecksumICMP),
		gre.New(),
	}
	for _, c := range all {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
