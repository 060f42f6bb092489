// Command rdm-discover finds the RDM responders on a DMX512 line.
//
// It drives an Enttec USB Pro compatible widget over a serial port, or a
// simulated bus described by a YAML scenario.
//
// Usage:
//
//	rdm-discover [command] [flags]
//
// Examples:
//
//	# Full discovery on the configured widget
//	rdm-discover run --config /etc/rdm/discover.yaml
//
//	# Full discovery, then an incremental pass every 30 seconds
//	rdm-discover run --serial /dev/ttyUSB0 --watch 30s
//
//	# Play every scenario in a directory
//	rdm-discover simulate scenarios/ --format junit
//
//	# Interactive shell against a simulated bus
//	rdm-discover console --scenario scenarios/three_devices.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rdm-protocol/rdm-go/internal/logging"
)

// Global flags
var (
	configPath  string
	logLevel    string
	capturePath string
)

// cfg is loaded before any subcommand runs.
var cfg *Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}

var rootCmd = &cobra.Command{
	Use:   "rdm-discover",
	Short: "RDM device discovery for DMX512 lines",
	Long: `Finds the RDM responders on a DMX512 line using the binary search of
ANSI E1.20 (DISC_UNIQUE_BRANCH, DISC_MUTE, DISC_UN_MUTE).

Bus traffic can be captured to a .rlog file for analysis with rdm-log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if capturePath != "" {
			loaded.CaptureLog = capturePath
		}
		if err := logging.Initialize(loaded.LogLevel); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default silent, or RDM_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&capturePath, "capture", "", "Write bus traffic to this .rlog file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(consoleCmd)
}
