package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/cobra"

	"firestige.xyz/stratum/internal/codecs"
	"firestige.xyz/stratum/internal/config"
	"firestige.xyz/stratum/internal/dispatch"
	"firestige.xyz/stratum/pkg/log"
)

var decodeCount int

var decodeCmd = &cobra.Command{
	Use:   "decode <file.pcap>",
	Short: "Decode the packets of a capture file layer by layer",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().IntVarP(&decodeCount, "count", "n", 0,
		"stop after this many packets (0 = all)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.GetLogger()

	d, err := newDispatcher(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read capture file: %w", err)
	}
	dlt := int(r.LinkType())

	n := 0
	for {
		data, _, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read packet %d: %w", n+1, err)
		}

		pkt, err := d.Decode(data, dlt)
		if err != nil {
			logger.WithError(err).Warnf("packet %d not decoded", n+1)
			continue
		}

		fields := map[string]interface{}{
			"packet":     n + 1,
			"type":       pkt.Data.PktType().String(),
			"layers":     len(pkt.Layers),
			"proto_bits": fmt.Sprintf("0x%04x", pkt.ProtoBits),
			"payload":    len(pkt.Payload),
		}
		if pkt.Data.Sp != 0 || pkt.Data.Dp != 0 {
			fields["sport"] = pkt.Data.Sp
			fields["dport"] = pkt.Data.Dp
		}
		if pkt.Data.IP.Valid() {
			fields["src"] = pkt.Data.IP.Src().String()
			fields["dst"] = pkt.Data.IP.Dst().String()
		}
		if flags := pkt.Data.DecodeFlags(); flags != 0 {
			fields["decode_flags"] = fmt.Sprintf("0x%04x", flags)
		}
		logger.WithFields(fields).Info("packet decoded")

		n++
		if decodeCount > 0 && n >= decodeCount {
			break
		}
	}

	logger.Infof("done, %d packets decoded", n)
	return nil
}

func newRegistry(cfg config.Config) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()
	if err := codecs.RegisterAll(reg, codecs.Options{
		ChecksumIP:   cfg.Decoder.Checksums.IP,
		ChecksumTCP:  cfg.Decoder.Checksums.TCP,
		ChecksumUDP:  cfg.Decoder.Checksums.UDP,
		ChecksumICMP: cfg.Decoder.Checksums.ICMP,
	}); err != nil {
		return nil, err
	}
	return reg, nil
}

func newDispatcher(cfg config.Config) (*dispatch.Dispatcher, error) {
	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return dispatch.New(reg,
		dispatch.WithMaxLayers(cfg.Decoder.MaxLayers),
		dispatch.WithEncodeCapacity(cfg.Decoder.EncodeBufferSize),
	), nil
}
