package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/internal/testharness/mock"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

var (
	devA = uid.New(0x0001, 0x00000001)
	devB = uid.New(0x8001, 0x00000001)
)

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	clock := mock.NewManualClock(0)
	bus := mock.NewBus(clock)
	require.NoError(t, bus.Add(mock.Responder{UID: devA}))
	require.NoError(t, bus.Add(mock.Responder{UID: devB}))

	engine, err := discovery.New(bus, clock)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	c := New(Session{
		Engine:  engine,
		Table:   tod.New(0),
		Name:    "simulated bus",
		Advance: func() { clock.Advance(mock.DefaultTick) },
	}, out)
	return c, out
}

func tickUntilFinished(t *testing.T, c *Console) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		if c.Tick() {
			return
		}
	}
	t.Fatal("pass did not finish")
}

func TestConsoleFullPass(t *testing.T) {
	c, out := newTestConsole(t)

	assert.False(t, c.Execute("full"))
	assert.Contains(t, out.String(), "full discovery started on port 0")

	out.Reset()
	c.Execute("full")
	assert.Contains(t, out.String(), "discovery already running")

	tickUntilFinished(t, c)
	assert.Contains(t, out.String(), "full discovery on port 0 finished")
	assert.Contains(t, out.String(), "2 device(s)")

	out.Reset()
	c.Execute("tod")
	assert.Contains(t, out.String(), "Table of devices (2)")
	assert.Contains(t, out.String(), devA.String())
	assert.Contains(t, out.String(), devB.String())

	out.Reset()
	c.Execute("stats")
	assert.Contains(t, out.String(), "collisions")

	out.Reset()
	c.Execute("state")
	assert.Equal(t, "IDLE (2 device(s))\n", out.String())
}

func TestConsoleStopAndQueue(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("queue")
	assert.Contains(t, out.String(), "queue empty")

	c.Execute("inc")
	out.Reset()
	c.Execute("state")
	assert.True(t, strings.HasPrefix(out.String(), "UNMUTE (port 0, incremental=true"), out.String())

	out.Reset()
	c.Execute("stop")
	assert.Contains(t, out.String(), "discovery stopped")

	out.Reset()
	c.Execute("stop")
	assert.Equal(t, "no discovery running\n", out.String())
}

func TestConsoleQueueDuringPass(t *testing.T) {
	c, out := newTestConsole(t)
	c.Execute("full")

	// Tick until the first collision has split the full range.
	for i := 0; i < 10000; i++ {
		c.Tick()
		if c.s.Engine.Stats().Collisions > 0 {
			break
		}
	}
	require.Positive(t, c.s.Engine.Stats().Collisions)

	out.Reset()
	c.Execute("queue")
	assert.Contains(t, out.String(), `"`)
	assert.NotContains(t, out.String(), "queue empty")
}

func TestConsoleHelpAndUnknown(t *testing.T) {
	c, out := newTestConsole(t)

	c.Execute("help")
	assert.Contains(t, out.String(), "Attached to simulated bus")
	assert.Contains(t, out.String(), "RDM Discovery Commands")

	out.Reset()
	assert.False(t, c.Execute("   "))
	assert.Empty(t, out.String())

	c.Execute("frobnicate now")
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	assert.True(t, c.Execute("QUIT"))
}

func TestRenderTOD(t *testing.T) {
	empty := RenderTOD(nil)
	assert.Contains(t, empty, "no devices")

	out := RenderTOD([]tod.Entry{{UID: devA, Muted: true}, {UID: devB}})
	assert.Contains(t, out, "Table of devices (2)")
	assert.Contains(t, out, "0001:00000001")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "no")
}
