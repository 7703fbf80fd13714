// Package eth implements the ethernet root codec.
package eth

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 14

	// DLT_EN10MB from libpcap
	dltEN10MB = 1
)

type Codec struct {
	core.BaseCodec
}

func New() *Codec {
	return &Codec{core.NewBaseCodec("eth")}
}

func (c *Codec) DataLinkTypes() []int {
	return []int{dltEN10MB}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}

	cd.LyrLen = headerLen
	cd.NextProtID = binary.BigEndian.Uint16(raw.Data[12:14])
	cd.ProtoBits |= core.ProtoBitEth
	return true
}

func (c *Codec) Encode(rawIn []byte, rawLen uint16, enc *core.EncodeState, buf *core.Buffer) bool {
	if enc.Flags&core.EncFlagRaw != 0 {
		// raw IP response, no outer ethernet header
		return true
	}
	if !buf.Allocate(headerLen) {
		return false
	}

	out := buf.Base()[:headerLen]
	if enc.Flags.Forward() {
		copy(out[0:12], rawIn[0:12])
	} else {
		copy(out[0:6], rawIn[6:12])
		copy(out[6:12], rawIn[0:6])
	}

	if enc.EthertypeSet() {
		binary.BigEndian.PutUint16(out[12:14], enc.NextEthertype)
	} else {
		copy(out[12:14], rawIn[12:14])
	}
	return true
}
