// Package arp implements the ARP codec. ARP is always a terminal layer.
package arp

import (
	"encoding/binary"

	"firestige.xyz/stratum/internal/core"
)

const (
	headerLen = 28 // ethernet/IPv4 ARP

	etherTypeARP = 0x0806

	hwTypeEthernet = 1
)

type Codec struct {
	core.BaseCodec
}

func New() *Codec {
	return &Codec{core.NewBaseCodec("arp")}
}

func (c *Codec) ProtocolIDs() []uint16 {
	return []uint16{etherTypeARP}
}

func (c *Codec) Decode(raw core.RawData, cd *core.CodecData, pkt *core.PktData) bool {
	if raw.Len < headerLen {
		return false
	}
	data := raw.Data

	if binary.BigEndian.Uint16(data[0:2]) != hwTypeEthernet {
		return false
	}

	cd.LyrLen = headerLen
	cd.ProtoBits |= core.ProtoBitARP
	pkt.SetPktType(core.PktTypeARP)
	return true
}
