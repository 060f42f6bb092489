package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rdm-protocol/rdm-go/cmd/rdm-discover/console"
	"github.com/rdm-protocol/rdm-go/internal/logging"
	"github.com/rdm-protocol/rdm-go/internal/testharness/loader"
	"github.com/rdm-protocol/rdm-go/internal/testharness/mock"
	"github.com/rdm-protocol/rdm-go/internal/testharness/runner"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
)

var scenarioPath string

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive discovery shell",
	Long: `Opens a shell to start, stop and inspect discovery passes.

Without --scenario the shell drives the configured widget. With --scenario
it drives a simulated bus built from the scenario's responders, using the
scenario's timing profile.`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Drive a simulated bus from this scenario file")
	consoleCmd.Flags().StringVar(&serialPort, "serial", "", "Serial device of the widget (overrides the config)")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	capture, closeCapture, err := openCapture(cfg.CaptureLog)
	if err != nil {
		return err
	}
	defer closeCapture()

	if scenarioPath != "" {
		session, err := simulatedSession(scenarioPath, capture)
		if err != nil {
			return err
		}
		return console.New(session, cmd.OutOrStdout()).Run(ctx)
	}

	widget, closeWidget, err := openWidget(ctx, capture)
	if err != nil {
		return err
	}
	defer closeWidget()

	e, err := newEngine(widget, nil, capture)
	if err != nil {
		return err
	}
	name := cfg.Serial.Port
	if serialPort != "" {
		name = serialPort
	}
	session := console.Session{
		Engine:   e,
		Table:    tod.New(cfg.TODCapacity),
		Name:     "widget on " + name,
		Interval: cfg.PollInterval,
	}
	return console.New(session, cmd.OutOrStdout()).Run(ctx)
}

// simulatedSession builds a console session over the scenario's bus. The
// bus clock advances one tick per engine run.
func simulatedSession(path string, capture log.Logger) (console.Session, error) {
	sc, err := loader.LoadScenario(path)
	if err != nil {
		return console.Session{}, err
	}
	clock := mock.NewManualClock(0)
	bus, err := runner.NewBus(sc, clock)
	if err != nil {
		return console.Session{}, err
	}
	table, err := runner.NewTable(sc)
	if err != nil {
		return console.Session{}, err
	}
	ec, err := sc.Config()
	if err != nil {
		return console.Session{}, err
	}

	opts := []discovery.Option{
		discovery.WithConfig(ec),
		discovery.WithLogger(logging.Named("discovery")),
	}
	if capture != nil {
		opts = append(opts, discovery.WithProtocolLogger(capture))
	}
	e, err := discovery.New(bus, clock, opts...)
	if err != nil {
		return console.Session{}, err
	}

	return console.Session{
		Engine:  e,
		Table:   table,
		Port:    sc.Port,
		Name:    "simulated bus " + sc.ID,
		Advance: func() { clock.Advance(mock.DefaultTick) },
	}, nil
}
