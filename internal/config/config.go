// Package config handles configuration loading using viper.
package config

import (
	"fmt"

	"firestige.xyz/stratum/internal/core"
)

// Config is the top-level static configuration. Maps to the root keys of
// the YAML file.
type Config struct {
	Decoder DecoderConfig `mapstructure:"decoder"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// DecoderConfig controls the decode/encode engine.
type DecoderConfig struct {
	SnapLen          int            `mapstructure:"snap_len"`           // longest frame fed to the decoder
	MaxLayers        int            `mapstructure:"max_layers"`         // decode chain depth bound
	EncodeBufferSize uint32         `mapstructure:"encode_buffer_size"` // capacity of one encode chain's buffer
	Checksums        ChecksumConfig `mapstructure:"checksums"`
}

// ChecksumConfig toggles per-protocol checksum verification. Failures are
// flagged on the packet, never fatal.
type ChecksumConfig struct {
	IP   bool `mapstructure:"ip"`
	TCP  bool `mapstructure:"tcp"`
	UDP  bool `mapstructure:"udp"`
	ICMP bool `mapstructure:"icmp"`
}

// MetricsConfig controls the Prometheus endpoint of long-running commands.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// LogConfig mirrors pkg/log.Config.
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   FileLogConfig `mapstructure:"file"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Decoder: DecoderConfig{
			SnapLen:          65535,
			MaxLayers:        32,
			EncodeBufferSize: core.PktMax,
			Checksums:        ChecksumConfig{IP: true, TCP: true, UDP: true, ICMP: true},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	if c.Decoder.SnapLen <= 0 {
		return fmt.Errorf("%w: snap_len must be positive", core.ErrConfigInvalid)
	}
	if c.Decoder.MaxLayers <= 0 {
		return fmt.Errorf("%w: max_layers must be positive", core.ErrConfigInvalid)
	}
	if c.Decoder.EncodeBufferSize == 0 {
		return fmt.Errorf("%w: encode_buffer_size must be positive", core.ErrConfigInvalid)
	}
	if c.Decoder.EncodeBufferSize > core.PktMax {
		return fmt.Errorf("%w: encode_buffer_size exceeds the %d byte packet bound",
			core.ErrConfigInvalid, core.PktMax)
	}
	return nil
}
