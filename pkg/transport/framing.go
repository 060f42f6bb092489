package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// Framing constants.
const (
	// StartCode opens every widget frame.
	StartCode = 0x7E

	// EndCode closes every widget frame.
	EndCode = 0xE7

	// HeaderSize is start code, label and the two length bytes.
	HeaderSize = 4

	// DefaultMaxMessageSize is the largest payload the widget accepts.
	DefaultMaxMessageSize = 600

	// MaxLogFrameDataSize is the maximum frame data size to include in logs.
	// Larger frames are truncated in log events.
	MaxLogFrameDataSize = 512
)

// Label identifies the widget message type.
type Label uint8

// Widget labels.
const (
	LabelGetWidgetParams         Label = 3
	LabelSetWidgetParams         Label = 4
	LabelReceivedDMXPacket       Label = 5
	LabelSendDMXPacketRequest    Label = 6
	LabelSendRDMPacketRequest    Label = 7
	LabelReceiveDMXOnChange      Label = 8
	LabelGetWidgetSerialNumber   Label = 10
	LabelSendRDMDiscoveryRequest Label = 11
	LabelRDMTimeout              Label = 12
)

// String returns the label name.
func (l Label) String() string {
	switch l {
	case LabelGetWidgetParams:
		return "GET_WIDGET_PARAMS"
	case LabelSetWidgetParams:
		return "SET_WIDGET_PARAMS"
	case LabelReceivedDMXPacket:
		return "RECEIVED_DMX_PACKET"
	case LabelSendDMXPacketRequest:
		return "SEND_DMX_PACKET_REQUEST"
	case LabelSendRDMPacketRequest:
		return "SEND_RDM_PACKET_REQUEST"
	case LabelReceiveDMXOnChange:
		return "RECEIVE_DMX_ON_CHANGE"
	case LabelGetWidgetSerialNumber:
		return "GET_WIDGET_SN"
	case LabelSendRDMDiscoveryRequest:
		return "SEND_RDM_DISCOVERY_REQUEST"
	case LabelRDMTimeout:
		return "RDM_TIMEOUT"
	default:
		return fmt.Sprintf("LABEL_%d", uint8(l))
	}
}

// Framing errors.
var (
	// ErrMessageTooLarge indicates the message exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrBadEndCode indicates a frame whose end code is missing.
	ErrBadEndCode = errors.New("frame end code missing")
)

// Frame is one widget message.
type Frame struct {
	Label Label
	Data  []byte
}

// FrameWriter writes widget frames to an underlying writer.
type FrameWriter struct {
	w              io.Writer
	maxMessageSize int
	mu             sync.Mutex

	// Logging support (optional)
	logger    log.Logger
	sessionID string
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{
		w:              w,
		maxMessageSize: DefaultMaxMessageSize,
	}
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, sessionID string) {
	fw.logger = logger
	fw.sessionID = sessionID
}

// WriteFrame writes one frame. Empty data is valid; several requests
// carry no payload.
// Thread-safe: can be called from multiple goroutines.
func (fw *FrameWriter) WriteFrame(label Label, data []byte) error {
	if len(data) > fw.maxMessageSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxMessageSize)
	}

	buf := make([]byte, 0, FrameSize(len(data)))
	buf = append(buf, StartCode, byte(label), byte(len(data)), byte(len(data)>>8))
	buf = append(buf, data...)
	buf = append(buf, EndCode)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	// One write keeps the frame contiguous on the serial line.
	if _, err := fw.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", label, err)
	}

	if fw.logger != nil {
		fw.logger.Log(makeFrameEvent(label, data, log.DirectionOut, fw.sessionID))
	}
	return nil
}

// FrameReader reads widget frames from an underlying reader. Bytes outside
// a frame are skipped.
type FrameReader struct {
	r              *bufio.Reader
	maxMessageSize int

	// Logging support (optional)
	logger    log.Logger
	sessionID string
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:              bufio.NewReader(r),
		maxMessageSize: DefaultMaxMessageSize,
	}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, sessionID string) {
	fr.logger = logger
	fr.sessionID = sessionID
}

// SetMaxMessageSize updates the maximum message size.
func (fr *FrameReader) SetMaxMessageSize(size int) {
	fr.maxMessageSize = size
}

// ReadFrame reads the next frame. It returns io.EOF when the stream ends
// between frames. ErrMessageTooLarge and ErrBadEndCode leave the reader
// positioned to resynchronise on the next start code.
func (fr *FrameReader) ReadFrame() (Frame, error) {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return Frame{}, err
		}
		if b == StartCode {
			break
		}
	}

	var hdr [HeaderSize - 1]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, truncated(err)
	}
	label := Label(hdr[0])
	length := int(hdr[1]) | int(hdr[2])<<8
	if length > fr.maxMessageSize {
		return Frame{}, fmt.Errorf("%w: %s %d > %d", ErrMessageTooLarge, label, length, fr.maxMessageSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(fr.r, data); err != nil {
		return Frame{}, truncated(err)
	}
	end, err := fr.r.ReadByte()
	if err != nil {
		return Frame{}, truncated(err)
	}
	if end != EndCode {
		return Frame{}, fmt.Errorf("%w: %s got 0x%02X", ErrBadEndCode, label, end)
	}

	if fr.logger != nil {
		fr.logger.Log(makeFrameEvent(label, data, log.DirectionIn, fr.sessionID))
	}
	return Frame{Label: label, Data: data}, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrFrameTruncated
	}
	return fmt.Errorf("failed to read frame: %w", err)
}

func makeFrameEvent(label Label, data []byte, direction log.Direction, sessionID string) log.Event {
	frameData := data
	isTruncated := false
	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		isTruncated = true
	}

	return log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: direction,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame: &log.FrameEvent{
			Label:     uint8(label),
			Size:      FrameSize(len(data)),
			Data:      frameData,
			Truncated: isTruncated,
		},
	}
}

// FrameSize returns the total frame size including header and end code.
func FrameSize(payloadSize int) int {
	return HeaderSize + payloadSize + 1
}
