package commands

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/rdm-protocol/rdm-go/pkg/log"
)

func readEvents(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
}

func TestRunFilter(t *testing.T) {
	tests := []struct {
		name  string
		opts  FilterOptions
		want  int
		check func(log.Event) bool
	}{
		{
			name:  "session",
			opts:  FilterOptions{SessionID: "sess-bbbb-2222", Port: -1},
			want:  1,
			check: func(e log.Event) bool { return e.SessionID == "sess-bbbb-2222" },
		},
		{
			name:  "port",
			opts:  FilterOptions{Port: 0},
			want:  10,
			check: func(e log.Event) bool { return e.Port == 0 },
		},
		{
			name:  "uid",
			opts:  FilterOptions{UID: "7a70:00000001", Port: -1},
			want:  4,
			check: func(e log.Event) bool { return e.Concerns(deviceA) },
		},
		{
			name:  "layer and direction",
			opts:  FilterOptions{Layer: "discovery", Direction: "in", Port: -1},
			want:  7,
			check: func(e log.Event) bool { return e.Layer == log.LayerDiscovery && e.Direction == log.DirectionIn },
		},
		{
			name:  "category",
			opts:  FilterOptions{Category: "error", Port: -1},
			want:  1,
			check: func(e log.Event) bool { return e.Error != nil },
		},
		{
			name:  "time window",
			opts:  FilterOptions{TimeStart: "2026-03-02T09:30:00Z", TimeEnd: "2026-03-02T09:30:00.005Z", Port: -1},
			want:  5,
			check: func(e log.Event) bool { return e.Port == 0 },
		},
	}

	path := createTestLogFile(t, discoveryCapture())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Output = filepath.Join(t.TempDir(), "filtered.rlog")
			n, err := RunFilter(path, tt.opts)
			if err != nil {
				t.Fatalf("RunFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("RunFilter kept %d events, want %d", n, tt.want)
			}

			events := readEvents(t, tt.opts.Output)
			if len(events) != tt.want {
				t.Fatalf("output has %d events, want %d", len(events), tt.want)
			}
			for _, e := range events {
				if !tt.check(e) {
					t.Errorf("unexpected event in output: %+v", e)
				}
			}
		})
	}
}

func TestBuildFilterErrors(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"bad uid", FilterOptions{UID: "nope"}},
		{"bad start", FilterOptions{TimeStart: "yesterday"}},
		{"bad end", FilterOptions{TimeEnd: "2026-13-01"}},
		{"bad layer", FilterOptions{Layer: "service"}},
		{"bad direction", FilterOptions{Direction: "up"}},
		{"bad category", FilterOptions{Category: "control"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildFilter(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunFilterRequiresOutput(t *testing.T) {
	path := createTestLogFile(t, discoveryCapture())
	if _, err := RunFilter(path, FilterOptions{Port: -1}); err == nil {
		t.Error("expected error without output path")
	}
}
