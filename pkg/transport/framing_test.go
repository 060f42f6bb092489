package transport

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rdm-protocol/rdm-go/pkg/log"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		label Label
		data  []byte
	}{
		{"empty", LabelGetWidgetSerialNumber, nil},
		{"dub response", LabelReceivedDMXPacket, append([]byte{0}, bytes.Repeat([]byte{0xFE}, 24)...)},
		{"contains codes", LabelSendRDMPacketRequest, []byte{StartCode, EndCode, 0x00}},
		{"max size", LabelSendDMXPacketRequest, bytes.Repeat([]byte{0x55}, DefaultMaxMessageSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := NewFrameWriter(buf).WriteFrame(tt.label, tt.data); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
			if buf.Len() != FrameSize(len(tt.data)) {
				t.Errorf("frame size = %d, want %d", buf.Len(), FrameSize(len(tt.data)))
			}

			f, err := NewFrameReader(buf).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if f.Label != tt.label {
				t.Errorf("label = %v, want %v", f.Label, tt.label)
			}
			if !bytes.Equal(f.Data, tt.data) {
				t.Errorf("data mismatch: got %d bytes, want %d", len(f.Data), len(tt.data))
			}
		})
	}
}

func TestFrameLayout(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := NewFrameWriter(buf).WriteFrame(LabelSendRDMPacketRequest, []byte{0xCC, 0x01}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x7E, 7, 2, 0, 0xCC, 0x01, 0xE7}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("frame = % X, want % X", buf.Bytes(), want)
	}
}

func TestFrameWriterMessageTooLarge(t *testing.T) {
	err := NewFrameWriter(io.Discard).WriteFrame(LabelSendDMXPacketRequest, make([]byte, DefaultMaxMessageSize+1))
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestFrameReaderSkipsNoise(t *testing.T) {
	stream := []byte{0x00, 0xFF, 0x13, 0x7E, 12, 0, 0, 0xE7}
	f, err := NewFrameReader(bytes.NewReader(stream)).ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if f.Label != LabelRDMTimeout || len(f.Data) != 0 {
		t.Errorf("frame = %+v, want empty RDM_TIMEOUT", f)
	}
}

func TestFrameReaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		want   error
	}{
		{"eof between frames", []byte{0x01, 0x02}, io.EOF},
		{"truncated header", []byte{0x7E, 5}, ErrFrameTruncated},
		{"truncated data", []byte{0x7E, 5, 4, 0, 1, 2}, ErrFrameTruncated},
		{"missing end code", []byte{0x7E, 5, 4, 0, 1, 2, 3}, ErrFrameTruncated},
		{"bad end code", []byte{0x7E, 5, 1, 0, 9, 0x00}, ErrBadEndCode},
		{"too large", []byte{0x7E, 5, 0xFF, 0xFF}, ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrameReader(bytes.NewReader(tt.stream)).ReadFrame()
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameReaderResyncsAfterBadFrame(t *testing.T) {
	stream := []byte{
		0x7E, 5, 1, 0, 9, 0x00, // bad end code
		0x7E, 10, 4, 0, 1, 2, 3, 4, 0xE7,
	}
	r := NewFrameReader(bytes.NewReader(stream))

	if _, err := r.ReadFrame(); !errors.Is(err, ErrBadEndCode) {
		t.Fatalf("first ReadFrame() error = %v, want ErrBadEndCode", err)
	}
	f, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("second ReadFrame failed: %v", err)
	}
	if f.Label != LabelGetWidgetSerialNumber || !bytes.Equal(f.Data, []byte{1, 2, 3, 4}) {
		t.Errorf("frame = %+v", f)
	}
}

func TestLabelString(t *testing.T) {
	if got := LabelSendRDMDiscoveryRequest.String(); got != "SEND_RDM_DISCOVERY_REQUEST" {
		t.Errorf("String() = %q", got)
	}
	if got := Label(99).String(); got != "LABEL_99" {
		t.Errorf("String() = %q", got)
	}
}

// capturingLogger collects log events for testing.
type capturingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *capturingLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *capturingLogger) Events() []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]log.Event(nil), l.events...)
}

func TestFramingLogsFrames(t *testing.T) {
	logger := &capturingLogger{}
	buf := new(bytes.Buffer)

	w := NewFrameWriter(buf)
	w.SetLogger(logger, "session-1")
	if err := w.WriteFrame(LabelSendRDMPacketRequest, bytes.Repeat([]byte{1}, MaxLogFrameDataSize+10)); err != nil {
		t.Fatal(err)
	}

	r := NewFrameReader(buf)
	r.SetLogger(logger, "session-1")
	if _, err := r.ReadFrame(); err != nil {
		t.Fatal(err)
	}

	events := logger.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for i, dir := range []log.Direction{log.DirectionOut, log.DirectionIn} {
		ev := events[i]
		if ev.Direction != dir || ev.Layer != log.LayerTransport || ev.SessionID != "session-1" {
			t.Errorf("event %d = %+v", i, ev)
		}
		if ev.Frame == nil {
			t.Fatalf("event %d has no frame", i)
		}
		if ev.Frame.Label != uint8(LabelSendRDMPacketRequest) {
			t.Errorf("event %d label = %d", i, ev.Frame.Label)
		}
		if !ev.Frame.Truncated || len(ev.Frame.Data) != MaxLogFrameDataSize {
			t.Errorf("event %d not truncated to %d bytes", i, MaxLogFrameDataSize)
		}
		if ev.Frame.Size != FrameSize(MaxLogFrameDataSize+10) {
			t.Errorf("event %d size = %d", i, ev.Frame.Size)
		}
	}
}
