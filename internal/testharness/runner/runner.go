// Package runner plays loader scenarios against the simulated bus and
// checks the resulting table of devices.
package runner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rdm-protocol/rdm-go/internal/testharness/loader"
	"github.com/rdm-protocol/rdm-go/internal/testharness/mock"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// DefaultTickLimit bounds the Run calls of one scenario.
const DefaultTickLimit = 1_000_000

// ErrNotStarted is returned when the engine refuses to start a pass.
var ErrNotStarted = errors.New("discovery pass not started")

// Options configure scenario runs.
type Options struct {
	// Logger receives the engine's operational logs.
	Logger *zap.Logger

	// Capture receives the protocol events of every pass.
	Capture log.Logger

	// Tick is the simulated time between Run calls.
	Tick time.Duration

	// TickLimit bounds the Run calls of one scenario.
	TickLimit int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Tick <= 0 {
		o.Tick = mock.DefaultTick
	}
	if o.TickLimit <= 0 {
		o.TickLimit = DefaultTickLimit
	}
	return o
}

// Failure is one expectation the pass did not meet.
type Failure struct {
	Check    string
	Expected any
	Actual   any
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: expected %v, got %v", f.Check, f.Expected, f.Actual)
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario *loader.Scenario
	Passed   bool

	// Error is set when the pass could not run to completion.
	Error error

	Failures []Failure
	TOD      []uid.UID
	Stats    discovery.Stats

	// Ticks is the number of Run calls the pass took.
	Ticks int

	// BusTime is the simulated time the pass took.
	BusTime time.Duration

	// Duration is the wall time of the run.
	Duration time.Duration
}

// SuiteResult collects the results of several scenarios.
type SuiteResult struct {
	SuiteName string
	Results   []*Result
	Duration  time.Duration
	PassCount int
	FailCount int
}

// NewBus builds the simulated line described by sc.
func NewBus(sc *loader.Scenario, clock mock.Clock) (*mock.Bus, error) {
	overlap, err := mock.ParseOverlap(sc.Overlap)
	if err != nil {
		return nil, err
	}
	bus := mock.NewBus(clock)
	bus.Port = sc.Port
	bus.Overlap = overlap
	bus.LatencyMicros = sc.LatencyMicros
	for _, r := range sc.Responders {
		err := bus.Add(mock.Responder{
			UID:           r.UID,
			Muted:         r.Muted,
			DropMutes:     r.DropMutes,
			Silent:        r.Silent,
			LatencyMicros: r.LatencyMicros,
		})
		if err != nil {
			return nil, err
		}
	}
	return bus, nil
}

// NewTable builds the table the controller starts the pass with.
func NewTable(sc *loader.Scenario) (*tod.Table, error) {
	table := tod.New(sc.TODCapacity)
	for _, u := range sc.InitialTOD {
		if !table.AddUID(u) && !table.Exist(u) {
			return nil, fmt.Errorf("initial table full at %s", u)
		}
	}
	return table, nil
}

// Run plays one scenario.
func Run(sc *loader.Scenario, opts Options) *Result {
	opts = opts.withDefaults()
	start := time.Now()
	res := &Result{Scenario: sc}
	defer func() {
		res.Duration = time.Since(start)
		res.Passed = res.Error == nil && len(res.Failures) == 0
	}()

	clock := mock.NewManualClock(0)
	bus, err := NewBus(sc, clock)
	if err != nil {
		res.Error = err
		return res
	}
	table, err := NewTable(sc)
	if err != nil {
		res.Error = err
		return res
	}
	cfg, err := sc.Config()
	if err != nil {
		res.Error = err
		return res
	}

	engineOpts := []discovery.Option{
		discovery.WithConfig(cfg),
		discovery.WithLogger(opts.Logger.With(zap.String("scenario", sc.ID))),
	}
	if opts.Capture != nil {
		engineOpts = append(engineOpts, discovery.WithProtocolLogger(opts.Capture))
	}
	engine, err := discovery.New(bus, clock, engineOpts...)
	if err != nil {
		res.Error = err
		return res
	}

	var started bool
	if sc.Incremental() {
		started = engine.Incremental(sc.Port, table)
	} else {
		started = engine.Full(sc.Port, table)
	}
	if !started {
		res.Error = ErrNotStarted
		return res
	}

	res.Ticks, res.Error = mock.RunUntilFinished(engine, clock, opts.Tick, opts.TickLimit)
	res.BusTime = time.Duration(clock.Micros()) * time.Microsecond
	res.TOD = table.UIDs()
	res.Stats = engine.Stats()
	if res.Error == nil {
		res.Failures = Check(sc.Expect, res.TOD, res.Stats)
	}
	return res
}

// RunSuite plays every scenario in order.
func RunSuite(name string, scenarios []*loader.Scenario, opts Options) *SuiteResult {
	start := time.Now()
	suite := &SuiteResult{SuiteName: name}
	for _, sc := range scenarios {
		res := Run(sc, opts)
		suite.Results = append(suite.Results, res)
		if res.Passed {
			suite.PassCount++
		} else {
			suite.FailCount++
		}
	}
	suite.Duration = time.Since(start)
	return suite
}
