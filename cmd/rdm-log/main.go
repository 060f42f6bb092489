// Command rdm-log views and analyzes RDM capture files.
//
// Capture files are written by rdm-discover with the --capture flag.
//
// Usage:
//
//	rdm-log <command> [flags] <file.rlog>
//
// Commands:
//
//	view     View capture in human-readable format
//	export   Export capture to JSONL or CSV
//	filter   Filter capture and write to new file
//	stats    Show statistics about the capture
//
// Examples:
//
//	# View only discovery decisions
//	rdm-log view --layer discovery --category outcome bus.rlog
//
//	# Everything concerning one device
//	rdm-log view --uid 7a70:00000001 bus.rlog
//
//	# Export to CSV
//	rdm-log export --format csv -o bus.csv bus.rlog
//
//	# Keep one session
//	rdm-log filter --session 3f2a9c1e-... -o pass.rlog bus.rlog
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rdm-protocol/rdm-go/cmd/rdm-log/commands"
)

var rootCmd = &cobra.Command{
	Use:           "rdm-log",
	Short:         "RDM capture analyzer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var viewCmd = &cobra.Command{
	Use:   "view [flags] <file.rlog>",
	Short: "View capture in human-readable format",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

var exportCmd = &cobra.Command{
	Use:   "export [flags] <file.rlog>",
	Short: "Export capture to JSONL or CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		return commands.RunExport(args[0], format, output)
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter [flags] <file.rlog>",
	Short: "Filter capture and write to new file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := commands.RunFilter(args[0], filterOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", n, filterOpts.Output)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <file.rlog>",
	Short: "Show statistics about the capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.RunStats(args[0], cmd.OutOrStdout())
	},
}

var filterOpts commands.FilterOptions

func init() {
	viewCmd.Flags().String("layer", "", "Filter by layer (transport, rdm, discovery)")
	viewCmd.Flags().String("direction", "", "Filter by direction (in, out)")
	viewCmd.Flags().String("category", "", "Filter by category (message, outcome, state, error)")
	viewCmd.Flags().String("uid", "", "Filter by device UID (mmmm:dddddddd)")

	exportCmd.Flags().String("format", "jsonl", "Output format (jsonl, csv)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	f := filterCmd.Flags()
	f.StringVarP(&filterOpts.Output, "output", "o", "", "Output file (required)")
	f.StringVar(&filterOpts.SessionID, "session", "", "Filter by session ID")
	f.IntVar(&filterOpts.Port, "port", -1, "Filter by port index")
	f.StringVar(&filterOpts.UID, "uid", "", "Filter by device UID (mmmm:dddddddd)")
	f.StringVar(&filterOpts.TimeStart, "time-start", "", "Include events at or after this time (RFC3339)")
	f.StringVar(&filterOpts.TimeEnd, "time-end", "", "Include events before this time (RFC3339)")
	f.StringVar(&filterOpts.Layer, "layer", "", "Filter by layer (transport, rdm, discovery)")
	f.StringVar(&filterOpts.Direction, "direction", "", "Filter by direction (in, out)")
	f.StringVar(&filterOpts.Category, "category", "", "Filter by category (message, outcome, state, error)")
	_ = filterCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(viewCmd, exportCmd, filterCmd, statsCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	var filter commands.ViewFilter
	flags := cmd.Flags()

	if s, _ := flags.GetString("layer"); s != "" {
		l, err := commands.ParseLayerFlag(s)
		if err != nil {
			return err
		}
		filter.Layer = &l
	}
	if s, _ := flags.GetString("direction"); s != "" {
		d, err := commands.ParseDirectionFlag(s)
		if err != nil {
			return err
		}
		filter.Direction = &d
	}
	if s, _ := flags.GetString("category"); s != "" {
		c, err := commands.ParseCategoryFlag(s)
		if err != nil {
			return err
		}
		filter.Category = &c
	}
	if s, _ := flags.GetString("uid"); s != "" {
		u, err := commands.ParseUIDFlag(s)
		if err != nil {
			return err
		}
		filter.UID = &u
	}

	return commands.RunView(args[0], filter, cmd.OutOrStdout())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
