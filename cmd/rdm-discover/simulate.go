package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rdm-protocol/rdm-go/internal/logging"
	"github.com/rdm-protocol/rdm-go/internal/testharness/loader"
	"github.com/rdm-protocol/rdm-go/internal/testharness/reporter"
	"github.com/rdm-protocol/rdm-go/internal/testharness/runner"
)

// Simulate command flags
var (
	reportFormat string
	verbose      bool
	tag          string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml|dir>",
	Short: "Run discovery against simulated buses",
	Long: `Plays one scenario file, or every scenario in a directory, against the
simulated RDM bus and checks the resulting table of devices.

The command fails when any scenario does not meet its expectations.`,
	Example: `  rdm-discover simulate scenarios/split_halves.yaml -v
  rdm-discover simulate scenarios/ --tag smoke --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&reportFormat, "format", "text", "Report format: text, json, junit")
	simulateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show tables and counters")
	simulateCmd.Flags().StringVar(&tag, "tag", "", "Only run scenarios with this tag")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	rep, err := reporter.New(reportFormat, cmd.OutOrStdout(), verbose)
	if err != nil {
		return err
	}
	scenarios, err := loadScenarios(args[0])
	if err != nil {
		return err
	}
	scenarios = loader.FilterByTag(scenarios, tag)
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios in %s", args[0])
	}

	capture, closeCapture, err := openCapture(cfg.CaptureLog)
	if err != nil {
		return err
	}
	defer closeCapture()

	suite := runner.RunSuite(filepath.Base(args[0]), scenarios, runner.Options{
		Logger:  logging.Named("discovery"),
		Capture: capture,
	})
	if len(suite.Results) == 1 {
		rep.ReportResult(suite.Results[0])
	} else {
		rep.ReportSuite(suite)
	}

	if suite.FailCount > 0 {
		return fmt.Errorf("%d of %d scenarios failed", suite.FailCount, len(suite.Results))
	}
	return nil
}

func loadScenarios(path string) ([]*loader.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loader.LoadDirectory(path)
	}
	sc, err := loader.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return []*loader.Scenario{sc}, nil
}
