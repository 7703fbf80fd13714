package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gopacket"
	"github.com/spf13/cobra"

	"firestige.xyz/stratum/internal/capture"
	"firestige.xyz/stratum/internal/metrics"
	"firestige.xyz/stratum/pkg/log"
)

var (
	captureIface         string
	captureBPF           string
	captureStatsInterval time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Decode live traffic from a network interface",
	Long: `Capture opens an AF_PACKET ring on the given interface, decodes every
frame layer by layer and exposes the results as Prometheus metrics.
Runs until interrupted.`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&captureIface, "interface", "i", "",
		"network interface to capture on")
	captureCmd.Flags().StringVar(&captureBPF, "bpf", "",
		"kernel-side BPF filter expression")
	captureCmd.Flags().DurationVar(&captureStatsInterval, "stats-interval", 30*time.Second,
		"how often to log capture statistics")
	captureCmd.MarkFlagRequired("interface")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.GetLogger()

	d, err := newDispatcher(cfg)
	if err != nil {
		return err
	}

	src, err := capture.NewSource(capture.Config{
		Interface: captureIface,
		BPFFilter: captureBPF,
		SnapLen:   cfg.Decoder.SnapLen,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	go logStats(ctx, src, logger)

	return src.Run(ctx, func(data []byte, ci gopacket.CaptureInfo) {
		metrics.CapturePacketsTotal.Inc()

		pkt, err := d.Decode(data, capture.DLTEthernet)
		if err != nil {
			logger.WithError(err).Debug("frame not decoded")
			return
		}

		src.Stats().CountPacket(pkt.Data.PktType())
		metrics.ObservePacket(pkt)

		if logger.IsDebugEnabled() {
			fields := map[string]interface{}{
				"type":    pkt.Data.PktType().String(),
				"layers":  len(pkt.Layers),
				"payload": len(pkt.Payload),
			}
			if pkt.Data.IP.Valid() {
				fields["src"] = pkt.Data.IP.Src().String()
				fields["dst"] = pkt.Data.IP.Dst().String()
			}
			if flags := pkt.Data.DecodeFlags(); flags != 0 {
				fields["decode_flags"] = fmt.Sprintf("0x%04x", flags)
			}
			logger.WithFields(fields).Debug("packet decoded")
		}
	})
}

// logStats periodically logs a counter snapshot and feeds the kernel drop
// count into the metrics as deltas.
func logStats(ctx context.Context, src *capture.Source, logger log.Logger) {
	ticker := time.NewTicker(captureStatsInterval)
	defer ticker.Stop()

	var lastDropped uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap := src.Stats().Snapshot()
		if snap.Dropped > lastDropped {
			metrics.CaptureDropsTotal.Add(float64(snap.Dropped - lastDropped))
			lastDropped = snap.Dropped
		}

		logger.WithFields(map[string]interface{}{
			"received": snap.Received,
			"dropped":  snap.Dropped,
			"tcp":      snap.TCP,
			"udp":      snap.UDP,
			"icmp":     snap.ICMP,
			"other":    snap.Other,
			"rate":     snap.RatePerSec,
		}).Info("capture statistics")
	}
}
