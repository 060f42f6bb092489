package log

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter writes capture events to a zap logger at Debug level.
// Useful for development when you want to see the bus trace in the console.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter creates a new ZapAdapter that writes to the given logger.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: logger}
}

// Log writes the event to the zap logger at Debug level.
func (a *ZapAdapter) Log(event Event) {
	if ce := a.logger.Check(zapcore.DebugLevel, "rdm"); ce != nil {
		ce.Write(Fields(event)...)
	}
}

// Fields renders an event as zap fields.
func Fields(event Event) []zap.Field {
	fields := []zap.Field{
		zap.String("session", shortID(event.SessionID)),
		zap.Int("port", event.Port),
		zap.String("direction", event.Direction.String()),
		zap.String("layer", event.Layer.String()),
		zap.String("category", event.Category.String()),
	}
	if event.UID != 0 {
		fields = append(fields, zap.String("uid", FormatUID(event.UID)))
	}

	switch {
	case event.Frame != nil:
		fields = append(fields,
			zap.Uint8("label", event.Frame.Label),
			zap.Int("frame_size", event.Frame.Size),
			zap.String("data", hex.EncodeToString(event.Frame.Data)),
		)
		if event.Frame.Truncated {
			fields = append(fields, zap.Bool("truncated", true))
		}
	case event.Message != nil:
		fields = append(fields,
			zap.String("cc", fmt.Sprintf("0x%02X", event.Message.CommandClass)),
			zap.String("pid", fmt.Sprintf("0x%04X", event.Message.PID)),
			zap.String("dst", FormatUID(event.Message.Destination)),
			zap.String("src", FormatUID(event.Message.Source)),
			zap.Uint8("tn", event.Message.TransactionNumber),
		)
	case event.Discovery != nil:
		d := event.Discovery
		fields = append(fields, zap.String("action", d.Action.String()))
		if d.Lower != 0 || d.Upper != 0 {
			fields = append(fields, zap.String("branch", FormatUID(d.Lower)+"-"+FormatUID(d.Upper)))
		}
		if d.Result != "" {
			fields = append(fields, zap.String("result", d.Result))
		}
		if d.Attempt > 0 {
			fields = append(fields, zap.Int("attempt", d.Attempt))
		}
		fields = append(fields, zap.Int("stack", d.StackDepth))
	case event.StateChange != nil:
		fields = append(fields,
			zap.String("entity", event.StateChange.Entity.String()),
			zap.String("old_state", event.StateChange.OldState),
			zap.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			fields = append(fields, zap.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		fields = append(fields,
			zap.String("error_layer", event.Error.Layer.String()),
			zap.String("error_msg", event.Error.Message),
			zap.String("error_context", event.Error.Context),
		)
	}
	return fields
}

// FormatUID renders a raw 48-bit UID as mmmm:dddddddd.
func FormatUID(v uint64) string {
	return fmt.Sprintf("%04x:%08x", uint16(v>>32), uint32(v))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZapAdapter)(nil)
