package core

// Codec flags carried in CodecData.Flags while one packet is decoded.
const (
	// FlagDF records a don't-fragment marker.
	FlagDF uint16 = 0x0001

	// FlagUnsureEncap marks the current encapsulation guess as possibly
	// wrong: a failure in the next layer must not raise an alert-worthy
	// error, and the dispatcher backs out to the save layer instead of
	// dropping the packet.
	FlagUnsureEncap uint16 = 0x0002

	// FlagSaveLayer marks a layer as the rollback point. Never set it
	// alone; use FlagEncapLayer, which arms FlagUnsureEncap for exactly
	// the next layer. Only one back-out depth is supported: the save
	// point stays valid until the dispatcher confirms the next layer or
	// reverts to it, and is never propagated further.
	FlagSaveLayer uint16 = 0x0004

	FlagEncapLayer uint16 = FlagSaveLayer | FlagUnsureEncap

	FlagRoutingSeen   uint16 = 0x0008 // ip6 routing extension seen, order checking
	FlagIPOptRRSeen   uint16 = 0x0010 // record-route option, icmp4 alerting
	FlagIPOptRtrAlt   uint16 = 0x0020 // router-alert option, igmp alerting
	FlagIPOptLenThree uint16 = 0x0040 // three-byte option length, igmp alerting
	FlagTeredoSeen    uint16 = 0x0080
	FlagStreamRebuilt uint16 = 0x0100 // set externally on reassembled streams

	FlagIPOptAll = FlagIPOptRRSeen | FlagIPOptRtrAlt | FlagIPOptLenThree
)

// Protocol presence bits accumulated over one packet's decode and consumed
// downstream to know which protocol categories were seen. One bit per
// category, fixed 16-bit layout.
const (
	ProtoBitNone          uint16 = 0x0000
	ProtoBitIP            uint16 = 0x0001
	ProtoBitARP           uint16 = 0x0002
	ProtoBitTCP           uint16 = 0x0004
	ProtoBitUDP           uint16 = 0x0008
	ProtoBitICMP          uint16 = 0x0010
	ProtoBitTeredo        uint16 = 0x0020
	ProtoBitGTP           uint16 = 0x0040
	ProtoBitMPLS          uint16 = 0x0080
	ProtoBitVLAN          uint16 = 0x0100
	ProtoBitEth           uint16 = 0x0200
	ProtoBitTCPEmbedICMP  uint16 = 0x0400
	ProtoBitUDPEmbedICMP  uint16 = 0x0800
	ProtoBitICMPEmbedICMP uint16 = 0x1000
	ProtoBitIP6Ext        uint16 = 0x2000
	ProtoBitFree          uint16 = 0x4000
	ProtoBitOther         uint16 = 0x8000
	ProtoBitAll           uint16 = 0xFFFF
)

// CodecData is the per-layer handoff record between the dispatcher and the
// codec it selected. NextProtID, LyrLen and InvalidBytes are re-initialized
// before every layer via NextLayer; the presence bits, codec flags and the
// ipv6 bookkeeping persist for the duration of one packet's decode.
type CodecData struct {
	NextProtID   uint16 // selects the next layer's codec; meaningful only on success
	LyrLen       uint16 // valid length of this layer
	InvalidBytes uint16 // malformed trailing bytes between LyrLen and the next layer

	ProtoBits  uint16 // protocol categories seen so far
	Flags      uint16 // FlagXxx codec flags
	IPLayerCnt uint8

	// ipv6 bookkeeping, owned by the ipv6 codec once initialized.
	IP6ExtensionCount uint8
	CurrIP6Extension  uint8
	IP6CsumProto      uint8
}

// NewCodecData returns a record primed with the initial protocol id.
func NewCodecData(initProt uint16) CodecData {
	return CodecData{NextProtID: initProt}
}

// NextLayer re-initializes the per-layer fields ahead of the next Decode
// call. Everything else carries over for the rest of the packet.
func (cd *CodecData) NextLayer(prot uint16) {
	cd.NextProtID = prot
	cd.LyrLen = 0
	cd.InvalidBytes = 0
}
