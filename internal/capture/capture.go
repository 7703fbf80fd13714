// Package capture reads frames off a live interface with AF_PACKET_V3 and
// feeds them to the decode engine.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/stratum/pkg/log"
)

const (
	defaultSnapLen   = 65535
	defaultBlockSize = 4 * 1024 * 1024
	defaultNumBlocks = 128

	pollTimeout = 100 * time.Millisecond
)

// DLTEthernet is the link-layer type of every frame an AF_PACKET source
// produces, for the decoder's root codec lookup.
const DLTEthernet = 1

// Config describes one capture source.
type Config struct {
	Interface string // required
	BPFFilter string // optional kernel-side filter
	SnapLen   int
	BlockSize int
	NumBlocks int
}

func (c Config) withDefaults() Config {
	if c.SnapLen <= 0 {
		c.SnapLen = defaultSnapLen
	}
	if c.BlockSize <= 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.NumBlocks <= 0 {
		c.NumBlocks = defaultNumBlocks
	}
	return c
}

// Handler consumes one captured frame. data points into the ring buffer and
// is only valid for the duration of the call; copy it to keep it.
type Handler func(data []byte, ci gopacket.CaptureInfo)

// Source is a live AF_PACKET capture on one interface.
type Source struct {
	cfg    Config
	stats  Stats
	logger log.Logger
}

func NewSource(cfg Config) (*Source, error) {
	if cfg.Interface == "" {
		return nil, fmt.Errorf("capture: interface is required")
	}
	return &Source{
		cfg:    cfg.withDefaults(),
		logger: log.GetLogger(),
	}, nil
}

// Stats returns the source's counters.
func (s *Source) Stats() *Stats { return &s.stats }

// Run opens the ring and blocks reading frames into handle until ctx is
// cancelled. The TPacket handle is owned by this call alone: it is closed
// here after the read loop exits, never concurrently, because closing it
// unmaps the ring buffer a pending zero-copy read may still reference.
func (s *Source) Run(ctx context.Context, handle Handler) error {
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(s.cfg.Interface),
		afpacket.OptFrameSize(s.cfg.SnapLen),
		afpacket.OptBlockSize(s.cfg.BlockSize),
		afpacket.OptNumBlocks(s.cfg.NumBlocks),
		afpacket.OptPollTimeout(pollTimeout),
		afpacket.OptTPacketVersion(afpacket.TPacketVersion3),
	)
	if err != nil {
		return fmt.Errorf("capture: failed to open %s: %w", s.cfg.Interface, err)
	}
	defer tp.Close()

	if s.cfg.BPFFilter != "" {
		if err := applyBPF(tp, s.cfg.SnapLen, s.cfg.BPFFilter); err != nil {
			return err
		}
		s.logger.WithField("filter", s.cfg.BPFFilter).Debug("BPF filter applied")
	}

	if err := tp.InitSocketStats(); err != nil {
		s.logger.WithError(err).Warn("failed to init socket stats")
	}

	s.logger.WithField("interface", s.cfg.Interface).Info("capture started")

	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("interface", s.cfg.Interface).Info("capture stopped")
			return nil
		default:
		}

		data, ci, err := tp.ZeroCopyReadPacketData()
		if err != nil {
			// poll timeout, EINTR and the like; cancellation is caught above
			if ctx.Err() != nil {
				s.logger.WithField("interface", s.cfg.Interface).Info("capture stopped")
				return nil
			}
			continue
		}

		s.stats.received.Add(1)
		if socketStats, _, statsErr := tp.SocketStats(); statsErr == nil {
			s.stats.dropped.Store(uint64(socketStats.Drops()))
		}

		handle(data, ci)
	}
}

// applyBPF compiles filter with libpcap and installs it on the ring socket.
func applyBPF(tp *afpacket.TPacket, snapLen int, filter string) error {
	pcapInsns, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, filter)
	if err != nil {
		return fmt.Errorf("capture: failed to compile BPF filter %q: %w", filter, err)
	}

	// pcap.BPFInstruction and bpf.RawInstruction carry the same four fields
	rawInsns := make([]bpf.RawInstruction, len(pcapInsns))
	for i, insn := range pcapInsns {
		rawInsns[i] = bpf.RawInstruction{
			Op: insn.Code,
			Jt: insn.Jt,
			Jf: insn.Jf,
			K:  insn.K,
		}
	}

	if err := tp.SetBPF(rawInsns); err != nil {
		return fmt.Errorf("capture: failed to set BPF: %w", err)
	}
	return nil
}
