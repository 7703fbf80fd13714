// Package metrics implements Prometheus metrics for the decode engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/stratum/internal/core"
)

var (
	// PacketsTotal counts decoded packets by classified type.
	PacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratum_packets_total",
			Help: "Total number of packets decoded",
		},
		[]string{"pkt_type"},
	)

	// LayersTotal counts decoded layers by codec.
	LayersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratum_layers_total",
			Help: "Total number of protocol layers decoded",
		},
		[]string{"codec"},
	)

	// DecodeAnomaliesTotal counts the decode flags raised on packets.
	DecodeAnomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratum_decode_anomalies_total",
			Help: "Total number of decode anomalies flagged",
		},
		[]string{"kind"},
	)

	// CapturePacketsTotal counts frames read off the wire.
	CapturePacketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stratum_capture_packets_total",
			Help: "Total number of frames captured",
		},
	)

	// CaptureDropsTotal counts frames the kernel or the ring dropped.
	CaptureDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stratum_capture_drops_total",
			Help: "Total number of frames dropped during capture",
		},
	)
)

var anomalyNames = []struct {
	flag uint16
	name string
}{
	{core.DecodeErrCksumIP, "cksum_ip"},
	{core.DecodeErrCksumTCP, "cksum_tcp"},
	{core.DecodeErrCksumUDP, "cksum_udp"},
	{core.DecodeErrCksumICMP, "cksum_icmp"},
	{core.DecodeErrBadTTL, "bad_ttl"},
	{core.DecodeFrag, "fragment"},
}

// ObservePacket records one decoded packet.
func ObservePacket(p *core.Packet) {
	PacketsTotal.WithLabelValues(p.Data.PktType().String()).Inc()
	for i := range p.Layers {
		LayersTotal.WithLabelValues(p.Layers[i].Codec.Name()).Inc()
	}

	flags := p.Data.DecodeFlags()
	if flags == 0 {
		return
	}
	for _, a := range anomalyNames {
		if flags&a.flag != 0 {
			DecodeAnomaliesTotal.WithLabelValues(a.name).Inc()
		}
	}
}
