package mock

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// ControllerUID is the source UID the bus puts on controller requests.
var ControllerUID = uid.New(0x7a70, 0x00000001)

// Clock is the time source the bus schedules replies on.
type Clock interface {
	Micros() uint64
}

// Request is a command the controller sent on the bus.
type Request struct {
	// At is the bus time of the send.
	At uint64

	// Port is the port the command was sent on.
	Port int

	// Message is the encoded request.
	Message rdm.Message

	// Branch is the searched range of a DISC_UNIQUE_BRANCH.
	Branch uid.Range
}

// Handlers override how the bus answers a request. A handler returning
// handled false falls through to the simulated responders.
type Handlers struct {
	// OnBranch is called for every DISC_UNIQUE_BRANCH.
	OnBranch func(r uid.Range) (reply []byte, handled bool)

	// OnMute is called for every DISC_MUTE.
	OnMute func(dst uid.UID) (reply []byte, handled bool)
}

type reply struct {
	data    []byte
	readyAt uint64
}

// Overlap selects how replies of several devices to one
// DISC_UNIQUE_BRANCH combine on the line.
type Overlap uint8

const (
	// OverlapCorrupt reads every byte the replies disagree on as a framing
	// error (0x00). The combined reply never decodes to a valid UID.
	OverlapCorrupt Overlap = iota

	// OverlapWiredAnd combines the replies bit by bit, a dominant low
	// winning. Replies that differ in a few bits can decode as a clean
	// response from one of the devices.
	OverlapWiredAnd
)

// String returns the name used in scenario files.
func (o Overlap) String() string {
	switch o {
	case OverlapCorrupt:
		return "corrupt"
	case OverlapWiredAnd:
		return "wired_and"
	default:
		return fmt.Sprintf("Overlap(%d)", uint8(o))
	}
}

// ParseOverlap parses an overlap name. The empty string is OverlapCorrupt.
func ParseOverlap(s string) (Overlap, error) {
	switch s {
	case "", "corrupt":
		return OverlapCorrupt, nil
	case "wired_and":
		return OverlapWiredAnd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOverlap, s)
	}
}

// Bus is a simulated half-duplex RDM line. It implements the discovery
// Transport for a single port. Several devices answering one
// DISC_UNIQUE_BRANCH superimpose as selected by Overlap.
type Bus struct {
	// Port is the only port the bus accepts commands for.
	Port int

	// Overlap is the superposition model for simultaneous replies.
	Overlap Overlap

	// LatencyMicros is the turnaround of every reply.
	LatencyMicros uint64

	// ReportSilence makes Poll report an unanswered command as complete
	// once the latency has passed, like a widget timeout.
	ReportSilence bool

	// SendErr, when set, is returned by every send.
	SendErr error

	Handlers Handlers

	clock      Clock
	responders []*Responder
	pending    *reply
	sentAt     uint64
	sent       []Request
	tn         uint8
	mu         sync.Mutex
}

// NewBus creates an empty bus on port 0.
func NewBus(clock Clock) *Bus {
	return &Bus{clock: clock}
}

// Add attaches a device.
func (b *Bus) Add(r Responder) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.find(r.UID) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateResponder, r.UID)
	}
	b.responders = append(b.responders, &r)
	return nil
}

// Remove detaches a device and reports whether it was present.
func (b *Bus) Remove(u uid.UID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, r := range b.responders {
		if r.UID == u {
			b.responders = append(b.responders[:i], b.responders[i+1:]...)
			return true
		}
	}
	return false
}

// Responder returns the device with UID u, or nil.
func (b *Bus) Responder(u uid.UID) *Responder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.find(u)
}

// UIDs returns the attached device UIDs in ascending order.
func (b *Bus) UIDs() []uid.UID {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]uid.UID, len(b.responders))
	for i, r := range b.responders {
		out[i] = r.UID
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sent returns a copy of the request log.
func (b *Bus) Sent() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Request, len(b.sent))
	copy(out, b.sent)
	return out
}

// Count returns how many requests with the given PID were sent.
func (b *Bus) Count(pid rdm.PID) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, r := range b.sent {
		if r.Message.PID == pid {
			n++
		}
	}
	return n
}

// ClearSent empties the request log.
func (b *Bus) ClearSent() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = b.sent[:0]
}

// SendDUB broadcasts DISC_UNIQUE_BRANCH for r.
func (b *Bus) SendDUB(port int, r uid.Range) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := rdm.DiscUniqueBranch(ControllerUID, uint8(port+1), b.nextTN(), r)
	if err := b.record(port, msg, r); err != nil {
		return err
	}

	if b.Handlers.OnBranch != nil {
		if data, ok := b.Handlers.OnBranch(r); ok {
			b.schedule(data, 0)
			return nil
		}
	}

	var (
		replies [][]byte
		latency uint64
	)
	for _, dev := range b.responders {
		if !dev.answersBranch(r) {
			continue
		}
		dev.Received++
		replies = append(replies, rdm.EncodeDiscoveryResponse(dev.UID))
		latency = max(latency, dev.LatencyMicros)
	}
	b.schedule(superpose(b.Overlap, replies), latency)
	return nil
}

// SendMute sends DISC_MUTE to dst.
func (b *Bus) SendMute(port int, dst uid.UID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := rdm.DiscMute(ControllerUID, dst, uint8(port+1), b.nextTN())
	if err := b.record(port, msg, uid.Range{}); err != nil {
		return err
	}

	if b.Handlers.OnMute != nil {
		if data, ok := b.Handlers.OnMute(dst); ok {
			b.schedule(data, 0)
			return nil
		}
	}
	b.deliver(&msg, dst, true)
	return nil
}

// SendUnMute sends DISC_UN_MUTE to dst.
func (b *Bus) SendUnMute(port int, dst uid.UID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := rdm.DiscUnMute(ControllerUID, dst, uint8(port+1), b.nextTN())
	if err := b.record(port, msg, uid.Range{}); err != nil {
		return err
	}
	b.deliver(&msg, dst, false)
	return nil
}

// Poll returns the reply to the last command once its latency has passed.
func (b *Bus) Poll(port int) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if port != b.Port || b.pending == nil || b.clock.Micros() < b.pending.readyAt {
		return nil, false
	}
	if len(b.pending.data) == 0 && !b.ReportSilence {
		return nil, false
	}
	data := b.pending.data
	b.pending = nil
	return data, true
}

// Wait advances clock past the bus latency. It is a convenience for tests
// driving a ManualClock.
func (b *Bus) Wait(clock *ManualClock) {
	clock.Advance(time.Duration(b.LatencyMicros+1) * time.Microsecond)
}

func (b *Bus) deliver(msg *rdm.Message, dst uid.UID, mute bool) {
	var (
		data    []byte
		latency uint64
	)
	for _, dev := range b.responders {
		if !dst.IsBroadcast() && dev.UID != dst {
			continue
		}
		if ack := dev.handleMute(msg, mute); ack != nil {
			data = ack
			latency = dev.LatencyMicros
		}
	}
	b.schedule(data, latency)
}

func (b *Bus) record(port int, msg rdm.Message, r uid.Range) error {
	if b.SendErr != nil {
		return b.SendErr
	}
	if port != b.Port {
		return fmt.Errorf("%w: %d", ErrWrongPort, port)
	}
	now := b.clock.Micros()
	b.sent = append(b.sent, Request{At: now, Port: port, Message: msg, Branch: r})
	b.sentAt = now
	return nil
}

func (b *Bus) schedule(data []byte, latency uint64) {
	b.pending = &reply{data: data, readyAt: b.sentAt + b.LatencyMicros + latency}
}

func (b *Bus) nextTN() uint8 {
	tn := b.tn
	b.tn++
	return tn
}

func (b *Bus) find(u uid.UID) *Responder {
	for _, r := range b.responders {
		if r.UID == u {
			return r
		}
	}
	return nil
}

// superpose combines simultaneous replies. An idle line reads high, so a
// shorter reply leaves the tail of a longer one intact under
// OverlapWiredAnd.
func superpose(mode Overlap, replies [][]byte) []byte {
	switch len(replies) {
	case 0:
		return nil
	case 1:
		return replies[0]
	}
	n := 0
	for _, r := range replies {
		n = max(n, len(r))
	}
	out := make([]byte, n)
	copy(out, replies[0])
	for i := len(replies[0]); i < n; i++ {
		out[i] = 0xFF
	}
	for _, r := range replies[1:] {
		for i := range out {
			switch {
			case mode == OverlapWiredAnd && i < len(r):
				out[i] &= r[i]
			case mode == OverlapWiredAnd:
			case i >= len(r) || r[i] != out[i]:
				out[i] = 0
			}
		}
	}
	return out
}
