package log

import (
	"testing"
	"time"
)

func TestNoopLoggerAcceptsEveryPayload(t *testing.T) {
	logger := NoopLogger{}
	base := Event{Timestamp: time.Now(), SessionID: "s", Layer: LayerDiscovery}

	payloads := []Event{
		base,
		{Frame: &FrameEvent{Label: 11, Size: 30}},
		{Message: &MessageEvent{CommandClass: 0x10, PID: 0x0001}},
		{Discovery: &DiscoveryEvent{Action: ActionBranch, Upper: 0xFFFFFFFFFFFE}},
		{StateChange: &StateChangeEvent{Entity: StateEntityDiscovery, NewState: "UNMUTE"}},
		{Error: &ErrorEventData{Message: "write failed"}},
	}
	for _, e := range payloads {
		logger.Log(e)
	}
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}

func TestNewSessionIDUnique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == b {
		t.Errorf("NewSessionID returned %q twice", a)
	}
	if len(a) != 36 {
		t.Errorf("len(NewSessionID()) = %d, want 36", len(a))
	}
}

// recordingLogger records events for testing.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	multi := NewMultiLogger(a, nil, b)

	multi.Log(Event{Timestamp: time.Now(), SessionID: "s-1", Port: 2})

	for i, r := range []*recordingLogger{a, b} {
		if len(r.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(r.events))
			continue
		}
		if r.events[0].Port != 2 {
			t.Errorf("logger %d: Port = %d, want 2", i, r.events[0].Port)
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	NewMultiLogger().Log(Event{Timestamp: time.Now()})
}

func TestCombine(t *testing.T) {
	if got := Combine(nil, nil); got != nil {
		t.Errorf("Combine(nil, nil) = %v, want nil", got)
	}

	a := &recordingLogger{}
	if got := Combine(nil, a); got != Logger(a) {
		t.Errorf("Combine(nil, a) = %v, want a itself", got)
	}

	b := &recordingLogger{}
	both := Combine(a, b)
	if _, ok := both.(*MultiLogger); !ok {
		t.Fatalf("Combine(a, b) = %T, want *MultiLogger", both)
	}
	both.Log(Event{Port: 1})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events: a=%d b=%d, want 1 each", len(a.events), len(b.events))
	}
}
