package dispatch

import (
	"fmt"

	"firestige.xyz/stratum/internal/core"
	"firestige.xyz/stratum/pkg/log"
)

const defaultMaxLayers = 32

// Dispatcher walks a packet through the registered codecs, one layer at a
// time. Decode slides a window over the raw bytes, letting each layer's
// result select the next codec; Encode rebuilds a packet from the already
// decoded layer list, innermost first. A Dispatcher holds no per-packet
// state, so a single instance serves any number of goroutines as long as
// each packet is processed on exactly one of them.
type Dispatcher struct {
	reg       *Registry
	maxLayers int
	encodeCap uint32
	logger    log.Logger
}

type Option func(*Dispatcher)

// WithMaxLayers bounds the decode walk; chains beyond the bound fail with
// ErrLayerLimit.
func WithMaxLayers(n int) Option {
	return func(d *Dispatcher) { d.maxLayers = n }
}

// WithEncodeCapacity sizes the buffer Encode allocates per call.
func WithEncodeCapacity(n uint32) Option {
	return func(d *Dispatcher) { d.encodeCap = n }
}

func WithLogger(l log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func New(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:       reg,
		maxLayers: defaultMaxLayers,
		encodeCap: core.PktMax,
		logger:    log.GetLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// savePoint captures everything needed to revert the decode to the layer
// that armed the unsure-encapsulation guess. Exactly one back-out depth is
// supported; a new save point replaces the previous one.
type savePoint struct {
	layers int
	offset uint32
	winLen uint32
	cd     core.CodecData
	data   core.PktData
}

// Decode runs the layer loop over one packet. Per-layer decode failures
// are not errors: a certain failure simply ends the chain with the rest of
// the bytes as payload, and an uncertain one reverts to the save layer.
// The returned packet is complete for whatever was decodable.
func (d *Dispatcher) Decode(data []byte, dlt int) (*core.Packet, error) {
	codec, ok := d.reg.ByDataLink(dlt)
	if !ok {
		return nil, fmt.Errorf("%w: dlt %d", core.ErrNoRootCodec, dlt)
	}

	p := &core.Packet{Raw: data}
	p.Data.Reset()

	cd := core.NewCodecData(core.ProtoFinished)
	offset := uint32(0)
	winLen := uint32(len(data))
	protID := core.ProtoFinished // id that selected the current codec; sentinel for the root
	var save *savePoint

	for {
		if len(p.Layers) >= d.maxLayers {
			return p, fmt.Errorf("%w: %d layers", core.ErrLayerLimit, len(p.Layers))
		}

		raw := core.RawData{Data: data[offset : offset+winLen], Len: winLen}
		prevIPCnt := cd.IPLayerCnt

		if !codec.Decode(raw, &cd, &p.Data) {
			if save != nil {
				d.backOut(p, save, &cd, &offset, &winLen)
			} else {
				d.logger.WithField("codec", codec.Name()).
					Debug("layer decode failed, aborting chain")
			}
			break
		}

		consumed := uint32(cd.LyrLen) + uint32(cd.InvalidBytes)
		if consumed == 0 || consumed > winLen {
			d.logger.WithField("codec", codec.Name()).
				WithField("consumed", consumed).
				Warn("codec reported an impossible layer length")
			break
		}

		p.Layers = append(p.Layers, core.Layer{
			ProtID:       protID,
			Start:        offset,
			Length:       cd.LyrLen,
			InvalidBytes: cd.InvalidBytes,
			Codec:        codec,
		})

		offset += consumed
		winLen -= consumed

		// an IP layer bounds the rest of the packet; anything past its
		// declared payload is link-layer padding
		if cd.IPLayerCnt > prevIPCnt && uint32(p.Data.IP.PayloadLen()) < winLen {
			winLen = uint32(p.Data.IP.PayloadLen())
		}

		if cd.Flags&core.FlagSaveLayer != 0 {
			// this layer is the rollback point; the unsure bit stays armed
			// for exactly the next layer
			save = d.arm(p, &cd, offset, winLen)
		} else if save != nil && cd.Flags&core.FlagUnsureEncap != 0 {
			// the guessed layer decoded fine; the guess is confirmed
			cd.Flags &^= core.FlagUnsureEncap
			save = nil
		}

		next := cd.NextProtID
		if next == core.ProtoFinished {
			break
		}
		codec, ok = d.reg.ByProtocol(next)
		if !ok {
			if save != nil && cd.Flags&core.FlagUnsureEncap != 0 {
				// a bogus next-protocol id out of an unsure guess
				d.backOut(p, save, &cd, &offset, &winLen)
			}
			break
		}
		protID = next
		cd.NextLayer(core.ProtoFinished)
	}

	p.ProtoBits = cd.ProtoBits
	p.Payload = data[offset : offset+winLen]
	return p, nil
}

func (d *Dispatcher) arm(p *core.Packet, cd *core.CodecData, offset, winLen uint32) *savePoint {
	sp := &savePoint{
		layers: len(p.Layers),
		offset: offset,
		winLen: winLen,
		cd:     *cd,
		data:   p.Data,
	}
	// the snapshot itself must restore to a confirmed state
	sp.cd.Flags &^= core.FlagEncapLayer
	cd.Flags &^= core.FlagSaveLayer
	return sp
}

func (d *Dispatcher) backOut(p *core.Packet, save *savePoint, cd *core.CodecData, offset, winLen *uint32) {
	d.logger.WithField("layers", len(p.Layers)-save.layers).
		Debug("encapsulation guess failed, backing out to save layer")
	p.Layers = p.Layers[:save.layers]
	p.Data = save.data
	*cd = save.cd
	*offset = save.offset
	*winLen = save.winLen
}

// Encode rebuilds a packet from its decoded layers, innermost first, into
// one backward-growing buffer. flags steer direction and per-layer policy,
// ttl is the override honored under EncFlagTTL, and payload, when present,
// is attached beneath the innermost layer. On any failure the output is
// nil: a partially filled buffer is never valid.
func (d *Dispatcher) Encode(p *core.Packet, flags core.EncodeFlags, ttl uint8, payload []byte) ([]byte, error) {
	if len(p.Layers) == 0 {
		return nil, core.ErrNothingToEncode
	}

	buf := core.NewBuffer(d.encodeCap)
	dsize := uint16(len(payload))
	if len(payload) > 0 {
		if !buf.Allocate(uint32(len(payload))) {
			return nil, fmt.Errorf("%w: %d byte payload", core.ErrBufferExhausted, len(payload))
		}
		copy(buf.Base()[:len(payload)], payload)
		flags |= core.EncFlagPay
	}

	nextProto := core.ProtoUnset
	nextEther := uint16(0)

	for i := len(p.Layers) - 1; i >= 0; i-- {
		lyr := &p.Layers[i]

		enc := core.NewEncodeState(&p.Data.IP, flags, nextProto, ttl, dsize)
		enc.NextEthertype = nextEther

		rawIn := p.Raw[lyr.Start : lyr.Start+uint32(lyr.Length)]
		if !lyr.Codec.Encode(rawIn, lyr.Length, enc, buf) {
			d.logger.WithField("codec", lyr.Codec.Name()).
				WithField("committed", buf.Size()).
				Debug("encode stopped on buffer exhaustion")
			return nil, fmt.Errorf("%w: in %s layer", core.ErrBufferExhausted, lyr.Codec.Name())
		}

		nextProto = enc.NextProto
		nextEther = enc.NextEthertype

		if flags&core.EncFlagNet != 0 && isNetworkLayer(lyr.ProtID) {
			break
		}
	}

	out := make([]byte, buf.Size())
	copy(out, buf.Base())
	return out, nil
}

// Update re-walks a structurally modified packet from the inside out,
// letting each codec recompute its layer's length and dependent fields in
// place. It returns the total length accumulated over payload and layers.
func (d *Dispatcher) Update(p *core.Packet) (uint32, error) {
	length := uint32(len(p.Payload))
	for i := len(p.Layers) - 1; i >= 0; i-- {
		lyr := &p.Layers[i]
		if !lyr.Codec.Update(p, lyr, &length) {
			return 0, fmt.Errorf("stratum: update failed in %s layer", lyr.Codec.Name())
		}
	}
	return length, nil
}

// Format propagates per-layer metadata from an original packet onto its
// clone, outermost first.
func (d *Dispatcher) Format(flags core.EncodeFlags, orig, clone *core.Packet) {
	for i := range clone.Layers {
		lyr := &clone.Layers[i]
		lyr.Codec.Format(flags, orig, clone, lyr)
	}
}

// isNetworkLayer reports whether the id names an IP layer, for the
// stop-at-network-layer encode flag.
func isNetworkLayer(protID uint16) bool {
	switch protID {
	case 0x0800, 0x86DD, 4, 41:
		return true
	}
	return false
}
