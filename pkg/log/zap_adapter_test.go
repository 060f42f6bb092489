package log

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapterLogsDiscoveryEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewZapAdapter(zap.New(core))

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "0123456789abcdef",
		Port:      1,
		Direction: DirectionOut,
		Layer:     LayerDiscovery,
		Category:  CategoryOutcome,
		Discovery: &DiscoveryEvent{
			Action: ActionBranch,
			Lower:  0,
			Upper:  0x7FFFFFFFFFFF,
			Result: "COLLISION",
		},
	})

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "01234567", ctx["session"])
	assert.Equal(t, int64(1), ctx["port"])
	assert.Equal(t, "BRANCH", ctx["action"])
	assert.Equal(t, "0000:00000000-7fff:ffffffff", ctx["branch"])
	assert.Equal(t, "COLLISION", ctx["result"])
}

func TestZapAdapterLogsMessageEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewZapAdapter(zap.New(core)).Log(Event{
		Layer:   LayerRDM,
		UID:     0x414200000A0B,
		Message: &MessageEvent{CommandClass: 0x11, PID: 0x0002, Source: 0x414200000A0B},
	})

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "0x11", ctx["cc"])
	assert.Equal(t, "0x0002", ctx["pid"])
	assert.Equal(t, "4142:00000a0b", ctx["src"])
	assert.Equal(t, "4142:00000a0b", ctx["uid"])
}

func TestZapAdapterRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewZapAdapter(zap.New(core)).Log(Event{StateChange: &StateChangeEvent{NewState: "IDLE"}})
	assert.Equal(t, 0, logs.Len())
}
