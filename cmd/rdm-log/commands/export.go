package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// csvHeader lists the columns written by the csv export.
var csvHeader = []string{"timestamp", "session_id", "port", "direction", "layer", "category", "uid", "type", "detail"}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, format, w)
}

func export(reader *log.Reader, format string, w io.Writer) error {
	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		device := ""
		if event.UID != 0 {
			device = log.FormatUID(event.UID)
		}
		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.SessionID,
			strconv.Itoa(event.Port),
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			device,
			eventType(event),
			eventDetail(event),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// eventDetail is a one-field summary of the payload for tabular output.
func eventDetail(event log.Event) string {
	switch {
	case event.Discovery != nil:
		d := event.Discovery
		if d.Action == log.ActionBranch {
			return log.FormatUID(d.Lower) + "-" + log.FormatUID(d.Upper)
		}
		return d.Result
	case event.Message != nil:
		return log.FormatUID(event.Message.Source) + ">" + log.FormatUID(event.Message.Destination)
	case event.Frame != nil:
		return strconv.Itoa(event.Frame.Size)
	case event.StateChange != nil:
		return event.StateChange.OldState + ">" + event.StateChange.NewState
	case event.Error != nil:
		return event.Error.Message
	}
	return ""
}
