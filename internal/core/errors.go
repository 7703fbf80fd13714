package core

import "errors"

// Sentinel errors shared across the module.
var (
	// Decode errors
	ErrNoRootCodec = errors.New("stratum: no codec for link-layer type")
	ErrLayerLimit  = errors.New("stratum: layer limit exceeded")

	// Encode errors
	ErrBufferExhausted = errors.New("stratum: encode buffer exhausted")
	ErrNothingToEncode = errors.New("stratum: packet has no decoded layers")

	// Registry errors
	ErrCodecConflict = errors.New("stratum: codec registration conflict")

	// Configuration errors
	ErrConfigInvalid = errors.New("stratum: invalid configuration")
)
