package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rdm-protocol/rdm-go/cmd/rdm-discover/console"
	"github.com/rdm-protocol/rdm-go/internal/logging"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
	"github.com/rdm-protocol/rdm-go/pkg/transport"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// serialNumberTimeout bounds the widget identification at startup.
const serialNumberTimeout = 2 * time.Second

// Run command flags
var (
	serialPort  string
	listPorts   bool
	watchPeriod time.Duration
	showStats   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover the devices behind a USB widget",
	Long: `Runs a full discovery pass through an Enttec USB Pro compatible widget
and prints the table of devices.

With --watch the command keeps running and repeats an incremental pass
each period, reporting devices that joined or left the line.`,
	Example: `  # List serial devices
  rdm-discover run --list

  # One full pass
  rdm-discover run --serial /dev/ttyUSB0

  # Keep watching the line
  rdm-discover run --serial /dev/ttyUSB0 --watch 30s --capture line.rlog`,
	RunE: runDiscover,
}

func init() {
	runCmd.Flags().StringVar(&serialPort, "serial", "", "Serial device of the widget (overrides the config)")
	runCmd.Flags().BoolVar(&listPorts, "list", false, "List serial devices and exit")
	runCmd.Flags().DurationVar(&watchPeriod, "watch", 0, "Repeat an incremental pass every period")
	runCmd.Flags().BoolVar(&showStats, "stats", false, "Print pass statistics")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if listPorts {
		ports, err := transport.ListPorts()
		if err != nil {
			return fmt.Errorf("failed to list serial ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Fprintln(out, "No serial ports found.")
		}
		for _, p := range ports {
			fmt.Fprintln(out, p)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	capture, closeCapture, err := openCapture(cfg.CaptureLog)
	if err != nil {
		return err
	}
	defer closeCapture()

	widget, closeAll, err := openWidget(ctx, capture)
	if err != nil {
		return err
	}
	defer closeAll()

	e, err := newEngine(widget, nil, capture)
	if err != nil {
		return err
	}
	table := tod.New(cfg.TODCapacity)

	e.Full(0, table)
	if err := drive(ctx, e, cfg.PollInterval, widget.Err); err != nil {
		return err
	}
	fmt.Fprintln(out, console.RenderTOD(table.Entries()))
	if showStats {
		fmt.Fprintln(out, console.RenderStats(e.Stats()))
	}
	if watchPeriod <= 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watchPeriod):
		}

		before := table.UIDs()
		e.Incremental(0, table)
		if err := drive(ctx, e, cfg.PollInterval, widget.Err); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		reportChanges(out, before, table)
	}
}

// openWidget opens the serial device and identifies the widget. Frames
// and RDM messages go to capture when it is set. The returned function
// closes both.
func openWidget(ctx context.Context, capture log.Logger) (*transport.Widget, func(), error) {
	serialCfg := cfg.Serial
	if serialPort != "" {
		serialCfg.Port = serialPort
	}
	port, err := transport.OpenSerial(ctx, serialCfg, logging.Named("serial"))
	if err != nil {
		return nil, nil, err
	}

	widget := transport.NewWidget(port, widgetOptions(cfg.SourceUID, capture)...)

	snCtx, cancel := context.WithTimeout(ctx, serialNumberTimeout)
	defer cancel()
	if sn, err := widget.SerialNumber(snCtx); err != nil {
		logging.Warn("widget did not report a serial number", zap.Error(err))
	} else {
		logging.Info("widget connected", zap.String("port", serialCfg.Port), zap.Uint32("serial", sn))
	}

	return widget, func() { _ = widget.Close() }, nil
}

// widgetOptions configures the widget link. The link gets its own capture
// session; the engine starts a new one for every pass.
func widgetOptions(source uid.UID, capture log.Logger) []transport.WidgetOption {
	opts := []transport.WidgetOption{transport.WithWidgetLogger(logging.Named("widget"))}
	if source != 0 {
		opts = append(opts, transport.WithSourceUID(source))
	}
	if capture != nil {
		session := log.NewSessionID()
		logging.Debug("widget capture session", zap.String("session", session))
		opts = append(opts, transport.WithCapture(capture, session))
	}
	return opts
}

func newEngine(tr discovery.Transport, clock discovery.Clock, capture log.Logger) (*discovery.Engine, error) {
	ec, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	opts := []discovery.Option{
		discovery.WithConfig(ec),
		discovery.WithLogger(logging.Named("discovery")),
	}
	if capture != nil {
		opts = append(opts, discovery.WithProtocolLogger(capture))
	}
	return discovery.New(tr, clock, opts...)
}

// reportChanges prints the devices that joined or left since before.
func reportChanges(w io.Writer, before []uid.UID, table *tod.Table) {
	joined, left := diffUIDs(before, table.UIDs())
	now := time.Now().Format(time.TimeOnly)
	for _, u := range joined {
		fmt.Fprintf(w, "%s + %s\n", now, u)
	}
	for _, u := range left {
		fmt.Fprintf(w, "%s - %s\n", now, u)
	}
}

func diffUIDs(before, after []uid.UID) (joined, left []uid.UID) {
	had := make(map[uid.UID]bool, len(before))
	for _, u := range before {
		had[u] = true
	}
	has := make(map[uid.UID]bool, len(after))
	for _, u := range after {
		has[u] = true
		if !had[u] {
			joined = append(joined, u)
		}
	}
	for _, u := range before {
		if !has[u] {
			left = append(left, u)
		}
	}
	return joined, left
}
