// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"

	"firestige.xyz/stratum/internal/config"
	"firestige.xyz/stratum/pkg/log"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stratum",
	Short: "Stratum - layered packet decode/encode engine",
	Long: `Stratum decodes raw packets into nested protocol layers and rebuilds
synthetic responses from the inside out.

Each layer's decode result selects the next layer's codec, tunneled
encapsulation guesses can be rolled back to the last confirmed layer, and
responses are assembled into a backward-growing buffer so outer checksums
and lengths always see final inner layers.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(protocolsCmd)
}

// loadConfig loads the configuration file and initializes logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	err = log.Init(log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File: log.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	return cfg, err
}
