package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"firestige.xyz/stratum/internal/core"
)

// Load reads the configuration file at path, layered over the defaults.
// An empty path yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, fmt.Errorf("config file does not exist: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("decoder.snap_len", cfg.Decoder.SnapLen)
	v.SetDefault("decoder.max_layers", cfg.Decoder.MaxLayers)
	v.SetDefault("decoder.encode_buffer_size", cfg.Decoder.EncodeBufferSize)
	v.SetDefault("decoder.checksums.ip", cfg.Decoder.Checksums.IP)
	v.SetDefault("decoder.checksums.tcp", cfg.Decoder.Checksums.TCP)
	v.SetDefault("decoder.checksums.udp", cfg.Decoder.Checksums.UDP)
	v.SetDefault("decoder.checksums.icmp", cfg.Decoder.Checksums.ICMP)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
