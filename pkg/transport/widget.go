package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// DefaultSourceUID is the controller UID used when none is configured.
var DefaultSourceUID = uid.New(0x7a70, 0xfffffe00)

// frameQueueSize bounds the frames buffered between the reader goroutine
// and Poll.
const frameQueueSize = 32

// Widget errors.
var (
	// ErrUnsupportedPort is returned for any port other than 0; the
	// widget drives a single DMX line.
	ErrUnsupportedPort = errors.New("widget has a single port")

	// ErrWidgetClosed is returned after Close or once the link failed.
	ErrWidgetClosed = errors.New("widget closed")
)

// WidgetOption configures a Widget.
type WidgetOption func(*Widget)

// WithSourceUID sets the controller UID placed in outgoing requests.
func WithSourceUID(u uid.UID) WidgetOption {
	return func(w *Widget) {
		w.source = u
	}
}

// WithWidgetLogger sets the operational logger.
func WithWidgetLogger(logger *zap.Logger) WidgetOption {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithCapture records frames and RDM messages to logger.
func WithCapture(logger log.Logger, sessionID string) WidgetOption {
	return func(w *Widget) {
		w.capture = logger
		w.sessionID = sessionID
	}
}

// Widget drives an Enttec USB Pro compatible RDM widget. It implements the
// discovery Transport: requests are written as widget frames and a reader
// goroutine queues the replies for Poll.
type Widget struct {
	rw     io.ReadWriteCloser
	writer *FrameWriter
	reader *FrameReader
	frames chan Frame

	source uid.UID
	tn     uint8

	// staleTimeouts counts RDM_TIMEOUT frames the widget still owes for
	// replies already delivered; they must not end a later request.
	staleTimeouts int

	logger    *zap.Logger
	capture   log.Logger
	sessionID string

	mu     sync.Mutex
	err    error
	closed chan struct{}
	wg     sync.WaitGroup
}

// NewWidget starts talking to a widget over rw.
func NewWidget(rw io.ReadWriteCloser, opts ...WidgetOption) *Widget {
	w := &Widget{
		rw:     rw,
		writer: NewFrameWriter(rw),
		reader: NewFrameReader(rw),
		frames: make(chan Frame, frameQueueSize),
		source: DefaultSourceUID,
		logger: zap.NewNop(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.capture != nil {
		w.writer.SetLogger(w.capture, w.sessionID)
		w.reader.SetLogger(w.capture, w.sessionID)
	}

	w.wg.Add(1)
	go w.readLoop()
	return w
}

// SourceUID returns the controller UID used in requests.
func (w *Widget) SourceUID() uid.UID {
	return w.source
}

// SendDUB sends DISC_UNIQUE_BRANCH for r.
func (w *Widget) SendDUB(port int, r uid.Range) error {
	return w.sendRDM(port, LabelSendRDMDiscoveryRequest, func(tn uint8) rdm.Message {
		return rdm.DiscUniqueBranch(w.source, uint8(port+1), tn, r)
	})
}

// SendMute sends DISC_MUTE to dst.
func (w *Widget) SendMute(port int, dst uid.UID) error {
	return w.sendRDM(port, LabelSendRDMPacketRequest, func(tn uint8) rdm.Message {
		return rdm.DiscMute(w.source, dst, uint8(port+1), tn)
	})
}

// SendUnMute sends DISC_UN_MUTE to dst.
func (w *Widget) SendUnMute(port int, dst uid.UID) error {
	return w.sendRDM(port, LabelSendRDMPacketRequest, func(tn uint8) rdm.Message {
		return rdm.DiscUnMute(w.source, dst, uint8(port+1), tn)
	})
}

// Poll returns the reply to the last request without blocking. A
// RECEIVED_DMX_PACKET carries the reply; an RDM_TIMEOUT reports that none
// came. Other frames are dropped. Poll and the Send methods must be called
// from one goroutine.
func (w *Widget) Poll(port int) ([]byte, bool) {
	if port != 0 {
		return nil, false
	}
	for {
		select {
		case f, ok := <-w.frames:
			if !ok {
				return nil, false
			}
			switch f.Label {
			case LabelReceivedDMXPacket:
				if len(f.Data) < 2 {
					continue
				}
				if f.Data[0] != 0 {
					w.logger.Debug("widget receive status", zap.Uint8("status", f.Data[0]))
				}
				data := f.Data[1:]
				if w.captureReply(data) != rdm.PIDDiscMute {
					// The widget follows every discovery reply except a
					// mute acknowledgement with RDM_TIMEOUT.
					w.staleTimeouts++
				}
				return data, true
			case LabelRDMTimeout:
				if w.staleTimeouts > 0 {
					w.staleTimeouts--
					continue
				}
				return nil, true
			default:
				w.logger.Debug("widget frame ignored", zap.Stringer("label", f.Label), zap.Int("len", len(f.Data)))
			}
		default:
			return nil, false
		}
	}
}

// SerialNumber asks the widget for its serial number. It must not be used
// while discovery is running; the reply shares the frame queue with Poll.
func (w *Widget) SerialNumber(ctx context.Context) (uint32, error) {
	w.drain()
	if err := w.write(LabelGetWidgetSerialNumber, nil); err != nil {
		return 0, err
	}
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case f, ok := <-w.frames:
			if !ok {
				return 0, w.Err()
			}
			if f.Label != LabelGetWidgetSerialNumber {
				continue
			}
			if len(f.Data) < 4 {
				return 0, fmt.Errorf("%w: serial number reply of %d bytes", ErrFrameTruncated, len(f.Data))
			}
			return binary.LittleEndian.Uint32(f.Data), nil
		}
	}
}

// Err returns the error that stopped the reader, if any.
func (w *Widget) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close closes the link and waits for the reader to exit.
func (w *Widget) Close() error {
	select {
	case <-w.closed:
		return nil
	default:
	}
	close(w.closed)
	err := w.rw.Close()
	w.wg.Wait()
	return err
}

func (w *Widget) sendRDM(port int, label Label, build func(tn uint8) rdm.Message) error {
	if port != 0 {
		return fmt.Errorf("%w: port %d", ErrUnsupportedPort, port)
	}
	msg := build(w.tn)
	w.tn++

	data, err := msg.Encode()
	if err != nil {
		return err
	}

	// A reply or timeout of an abandoned request must not answer this one.
	w.drain()
	if err := w.write(label, data); err != nil {
		return err
	}
	w.captureMessage(&msg, log.DirectionOut)
	return nil
}

func (w *Widget) write(label Label, data []byte) error {
	if err := w.Err(); err != nil {
		return err
	}
	select {
	case <-w.closed:
		return ErrWidgetClosed
	default:
	}
	return w.writer.WriteFrame(label, data)
}

func (w *Widget) drain() {
	for {
		select {
		case f, ok := <-w.frames:
			if !ok {
				return
			}
			if f.Label == LabelRDMTimeout && w.staleTimeouts > 0 {
				w.staleTimeouts--
			}
		default:
			return
		}
	}
}

func (w *Widget) readLoop() {
	defer w.wg.Done()
	defer close(w.frames)

	for {
		f, err := w.reader.ReadFrame()
		switch {
		case err == nil:
			select {
			case w.frames <- f:
			case <-w.closed:
				return
			}
		case errors.Is(err, ErrMessageTooLarge), errors.Is(err, ErrBadEndCode):
			w.logger.Warn("widget frame dropped", zap.Error(err))
		default:
			w.fail(err)
			return
		}
	}
}

func (w *Widget) fail(err error) {
	err = fmt.Errorf("%w: %w", ErrWidgetClosed, err)
	select {
	case <-w.closed:
		err = ErrWidgetClosed
	default:
		w.logger.Error("widget link lost", zap.Error(err))
		if w.capture != nil {
			w.capture.Log(log.Event{
				Timestamp: time.Now(),
				SessionID: w.sessionID,
				Layer:     log.LayerTransport,
				Category:  log.CategoryError,
				Error: &log.ErrorEventData{
					Layer:   log.LayerTransport,
					Message: err.Error(),
					Context: "read frame",
				},
			})
		}
	}
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

// captureReply records a reply that decodes as an RDM message and returns
// its PID. DUB responses return zero; the discovery engine records them.
func (w *Widget) captureReply(data []byte) rdm.PID {
	if len(data) == 0 || data[0] != rdm.StartCode {
		return 0
	}
	msg, err := rdm.Decode(data)
	if err != nil {
		return 0
	}
	w.captureMessage(msg, log.DirectionIn)
	return msg.PID
}

func (w *Widget) captureMessage(m *rdm.Message, dir log.Direction) {
	if w.capture == nil {
		return
	}
	w.capture.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: w.sessionID,
		Direction: dir,
		Layer:     log.LayerRDM,
		Category:  log.CategoryMessage,
		UID:       uint64(m.Destination),
		Message: &log.MessageEvent{
			CommandClass:      uint8(m.CommandClass),
			PID:               uint16(m.PID),
			Destination:       uint64(m.Destination),
			Source:            uint64(m.Source),
			TransactionNumber: m.TransactionNumber,
			PortID:            m.PortID,
			ParamData:         m.ParamData,
		},
	})
}
