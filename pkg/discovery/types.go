package discovery

import (
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// State is the engine state.
type State uint8

const (
	// StateIdle means no pass is running.
	StateIdle State = iota
	// StateUnMute broadcasts DISC_UN_MUTE at the start of a pass.
	StateUnMute
	// StateMute mutes every known UID before an incremental quick-find.
	StateMute
	// StateDiscovery runs the bisection search of a full pass.
	StateDiscovery
	// StateDiscoverySingleDevice probes a branch that has collapsed to one UID.
	StateDiscoverySingleDevice
	// StateQuickFind sends one probe over the full range for new devices.
	StateQuickFind
	// StateQuickFindDiscovery bisects after the quick-find probe collided.
	StateQuickFindDiscovery
	// StateLateResponse waits for a response that missed the response timeout.
	StateLateResponse
	// StateFinished reports the completed pass on the next Run.
	StateFinished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateUnMute:
		return "UNMUTE"
	case StateMute:
		return "MUTE"
	case StateDiscovery:
		return "DISCOVERY"
	case StateDiscoverySingleDevice:
		return "DISCOVERY_SINGLE_DEVICE"
	case StateQuickFind:
		return "QUICKFIND"
	case StateQuickFindDiscovery:
		return "QUICKFIND_DISCOVERY"
	case StateLateResponse:
		return "LATE_RESPONSE"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Transport sends discovery commands on an RDM port and returns raw replies.
// Implementations are hardware specific: a USB widget, a UART driver, or a
// simulated bus in tests.
type Transport interface {
	// SendDUB broadcasts DISC_UNIQUE_BRANCH for r.
	SendDUB(port int, r uid.Range) error

	// SendMute sends DISC_MUTE to dst.
	SendMute(port int, dst uid.UID) error

	// SendUnMute sends DISC_UN_MUTE to dst, usually uid.Broadcast.
	SendUnMute(port int, dst uid.UID) error

	// Poll reports the reply to the outstanding command without blocking.
	// ok is false while the reply is still pending. When ok is true, data
	// holds the bytes as received, possibly garbled, or is empty when the
	// transport knows no reply will come.
	Poll(port int) (data []byte, ok bool)
}

// Clock is a monotonic microsecond time source.
type Clock interface {
	Micros() uint64
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock counting from now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Micros returns the microseconds elapsed since the clock was created.
func (c *SystemClock) Micros() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}

// Stats counts what happened during the current or last pass.
type Stats struct {
	Branches      int // DUB probes sent, retries included
	Valid         int
	Collisions    int
	NoResponses   int
	LateResponses int
	MutesSent     int
	MuteFailures  int
	Added         int
	Removed       int
	MaxStackDepth int
}
