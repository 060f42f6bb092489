// Package console provides the interactive shell of rdm-discover.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
)

// DefaultInterval is the pause between engine ticks.
const DefaultInterval = time.Millisecond

// queueBufSize holds the rendered branch stack; longer queues are cut at a
// whole entry.
const queueBufSize = 4096

// Session is the engine and table the console drives.
type Session struct {
	Engine *discovery.Engine
	Table  *tod.Table
	Port   int

	// Name describes what is attached, e.g. the serial device.
	Name string

	// Advance moves simulated time after each tick. Nil on hardware.
	Advance func()

	// Interval between ticks; DefaultInterval when zero.
	Interval time.Duration
}

// Console is a readline shell controlling one discovery engine. A
// background loop ticks the engine; commands and ticks are serialized.
type Console struct {
	s   Session
	out io.Writer

	mu      sync.Mutex
	started time.Time
}

// New creates a console writing to out.
func New(s Session, out io.Writer) *Console {
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}
	return &Console{s: s, out: out}
}

// Run reads commands until quit, EOF or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rdm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    completer,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	c.mu.Lock()
	c.out = rl.Stdout()
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.drive(ctx)

	c.printHelp()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return nil
		}
		if c.Execute(line) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("full"),
	readline.PcItem("inc"),
	readline.PcItem("stop"),
	readline.PcItem("tod"),
	readline.PcItem("queue"),
	readline.PcItem("stats"),
	readline.PcItem("state"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

func (c *Console) drive(ctx context.Context) {
	ticker := time.NewTicker(c.s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick runs the engine once and reports a finished pass. It returns true
// when a pass finished on this tick.
func (c *Console) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.s.Engine.Run()
	if c.s.Advance != nil {
		c.s.Advance()
	}
	port, incremental, ok := c.s.Engine.IsFinished()
	if !ok {
		return false
	}
	kind := "full"
	if incremental {
		kind = "incremental"
	}
	fmt.Fprintf(c.out, "%s discovery on port %d finished in %s: %d device(s)\n",
		kind, port, time.Since(c.started).Round(time.Millisecond), c.s.Table.Len())
	return true
}

// Execute runs one command line. It returns true when the console should
// exit.
func (c *Console) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		c.printHelp()
	case "full", "f":
		c.cmdStart(false)
	case "inc", "incremental", "i":
		c.cmdStart(true)
	case "stop":
		if c.s.Engine.Stop() {
			fmt.Fprintf(c.out, "discovery stopped, %d device(s) kept\n", c.s.Table.Len())
		} else {
			fmt.Fprintln(c.out, "no discovery running")
		}
	case "tod", "t":
		fmt.Fprintln(c.out, RenderTOD(c.s.Table.Entries()))
	case "queue", "q":
		c.cmdQueue()
	case "stats":
		fmt.Fprintln(c.out, RenderStats(c.s.Engine.Stats()))
	case "state", "s":
		c.cmdState()
	case "quit", "exit":
		c.s.Engine.Stop()
		fmt.Fprintln(c.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", fields[0])
	}
	return false
}

func (c *Console) cmdStart(incremental bool) {
	var ok bool
	if incremental {
		ok = c.s.Engine.Incremental(c.s.Port, c.s.Table)
	} else {
		ok = c.s.Engine.Full(c.s.Port, c.s.Table)
	}
	if !ok {
		fmt.Fprintf(c.out, "discovery already running (%s)\n", c.s.Engine.State())
		return
	}
	c.started = time.Now()
	kind := "full"
	if incremental {
		kind = "incremental"
	}
	fmt.Fprintf(c.out, "%s discovery started on port %d\n", kind, c.s.Port)
}

func (c *Console) cmdQueue() {
	buf := make([]byte, queueBufSize)
	n := c.s.Engine.CopyWorkingQueue(buf)
	if n == 0 {
		fmt.Fprintln(c.out, "queue empty")
		return
	}
	fmt.Fprintln(c.out, string(buf[:n]))
}

func (c *Console) cmdState() {
	if port, incremental, ok := c.s.Engine.IsRunning(); ok {
		fmt.Fprintf(c.out, "%s (port %d, incremental=%t, %d device(s))\n",
			c.s.Engine.State(), port, incremental, c.s.Table.Len())
		return
	}
	fmt.Fprintf(c.out, "%s (%d device(s))\n", c.s.Engine.State(), c.s.Table.Len())
}

func (c *Console) printHelp() {
	if c.s.Name != "" {
		fmt.Fprintf(c.out, "\nAttached to %s\n", c.s.Name)
	}
	fmt.Fprintln(c.out, `
RDM Discovery Commands:
  Discovery:
    full               - Clear the table and rediscover every device
    inc                - Unmute, re-mute known devices and look for new ones
    stop               - Abandon the running pass

  Inspection:
    tod                - Show the table of devices
    queue              - Show the pending branches
    stats              - Show counters of the current or last pass
    state              - Show the engine state

  General:
    help               - Show this help
    quit               - Exit`)
}
