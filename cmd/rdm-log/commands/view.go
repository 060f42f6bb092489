// Package commands implements the rdm-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/transport"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// timestampLayout is used by every command that prints event times.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	UID       *uint64
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{Layer: f.Layer, Direction: f.Direction, Category: f.Category, UID: f.UID}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] port DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [%s] port %d %-3s %s %s\n",
		ts, shortenSessionID(event.SessionID), event.Port,
		event.Direction.String(), event.Layer.String(), eventType(event))

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.Discovery != nil:
		formatDiscoveryDetails(w, event.UID, event.Discovery)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// eventType names the payload carried by event.
func eventType(event log.Event) string {
	switch {
	case event.Frame != nil:
		return transport.Label(event.Frame.Label).String()
	case event.Message != nil:
		return rdm.PID(event.Message.PID).String()
	case event.Discovery != nil:
		return event.Discovery.Action.String()
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

func shortenSessionID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  %s TN=%d\n", rdm.CommandClass(msg.CommandClass).String(), msg.TransactionNumber)
	fmt.Fprintf(w, "  %s -> %s\n", log.FormatUID(msg.Source), log.FormatUID(msg.Destination))
	if len(msg.ParamData) > 0 {
		fmt.Fprintf(w, "  Params: %s\n", hex.EncodeToString(msg.ParamData))
	}
}

func formatDiscoveryDetails(w io.Writer, u uint64, d *log.DiscoveryEvent) {
	switch d.Action {
	case log.ActionBranch:
		fmt.Fprintf(w, "  Branch: %s - %s\n", log.FormatUID(d.Lower), log.FormatUID(d.Upper))
	case log.ActionOutcome, log.ActionLate:
		fmt.Fprintf(w, "  Result: %s\n", d.Result)
		if u != 0 {
			fmt.Fprintf(w, "  UID: %s\n", log.FormatUID(u))
		}
	default:
		fmt.Fprintf(w, "  UID: %s\n", log.FormatUID(u))
	}
	if d.Attempt > 0 {
		fmt.Fprintf(w, "  Attempt: %d\n", d.Attempt)
	}
	if d.StackDepth > 0 {
		fmt.Fprintf(w, "  Stack: %d\n", d.StackDepth)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "rdm":
		return log.LayerRDM, nil
	case "discovery":
		return log.LayerDiscovery, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, rdm, or discovery)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "outcome":
		return log.CategoryOutcome, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, outcome, state, or error)", s)
	}
}

// ParseUIDFlag parses a device UID in mmmm:dddddddd form.
func ParseUIDFlag(s string) (uint64, error) {
	u, err := uid.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid uid: %w", err)
	}
	return uint64(u), nil
}

// RunView prints every event of the log at path that passes filter.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
