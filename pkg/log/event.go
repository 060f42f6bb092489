package log

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one discovery pass or widget session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Port is the zero-based RDM port index.
	Port int `cbor:"3,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"4,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// UID is the device the event concerns, when there is one.
	UID uint64 `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Widget framing
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Decoded RDM message
	Discovery   *DiscoveryEvent   `cbor:"12,keyasint,omitempty"` // Engine actions and outcomes
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Engine/widget state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the bus.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the bus.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the widget framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerRDM is the RDM message layer (decoded messages).
	LayerRDM Layer = 1
	// LayerDiscovery is the discovery engine.
	LayerDiscovery Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerRDM:
		return "RDM"
	case LayerDiscovery:
		return "DISCOVERY"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates bytes or a message on the bus.
	CategoryMessage Category = 0
	// CategoryOutcome indicates a discovery decision (classification, add, skip).
	CategoryOutcome Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryOutcome:
		return "OUTCOME"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw widget frame data at the transport layer.
type FrameEvent struct {
	// Label is the widget message label.
	Label uint8 `cbor:"1,keyasint"`

	// Size is the frame size in bytes (including header and end code).
	Size int `cbor:"2,keyasint"`

	// Data is the frame payload (may be truncated for large frames).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// MessageEvent captures a decoded RDM message.
type MessageEvent struct {
	CommandClass      uint8  `cbor:"1,keyasint"`
	PID               uint16 `cbor:"2,keyasint"`
	Destination       uint64 `cbor:"3,keyasint"`
	Source            uint64 `cbor:"4,keyasint"`
	TransactionNumber uint8  `cbor:"5,keyasint"`

	// PortID is the port ID of requests or the response type of responses.
	PortID    uint8  `cbor:"6,keyasint"`
	ParamData []byte `cbor:"7,keyasint,omitempty"`
}

// DiscoveryEvent captures one step of the discovery search.
type DiscoveryEvent struct {
	// Action is what the engine did or observed.
	Action DiscoveryAction `cbor:"1,keyasint"`

	// Lower and Upper bound the branch concerned (DUB actions).
	Lower uint64 `cbor:"2,keyasint,omitempty"`
	Upper uint64 `cbor:"3,keyasint,omitempty"`

	// Result is the DUB classification name (Outcome actions).
	Result string `cbor:"4,keyasint,omitempty"`

	// StackDepth is the number of pending branches after the action.
	StackDepth int `cbor:"5,keyasint,omitempty"`

	// Attempt is the one-based transmission attempt.
	Attempt int `cbor:"6,keyasint,omitempty"`
}

// DiscoveryAction identifies a discovery step.
type DiscoveryAction uint8

const (
	// ActionBranch is a DISC_UNIQUE_BRANCH probe.
	ActionBranch DiscoveryAction = 0
	// ActionOutcome is the classification of a probe response.
	ActionOutcome DiscoveryAction = 1
	// ActionMute is a DISC_MUTE request.
	ActionMute DiscoveryAction = 2
	// ActionUnMute is a DISC_UN_MUTE request.
	ActionUnMute DiscoveryAction = 3
	// ActionAdded means a UID was confirmed and added to the table.
	ActionAdded DiscoveryAction = 4
	// ActionSkipped means a UID stopped answering and was left for the next pass.
	ActionSkipped DiscoveryAction = 5
	// ActionRemoved means a UID stopped answering and was deleted.
	ActionRemoved DiscoveryAction = 6
	// ActionLate means a response arrived inside the late window.
	ActionLate DiscoveryAction = 7
)

// String returns the action name.
func (a DiscoveryAction) String() string {
	switch a {
	case ActionBranch:
		return "BRANCH"
	case ActionOutcome:
		return "OUTCOME"
	case ActionMute:
		return "MUTE"
	case ActionUnMute:
		return "UNMUTE"
	case ActionAdded:
		return "ADDED"
	case ActionSkipped:
		return "SKIPPED"
	case ActionRemoved:
		return "REMOVED"
	case ActionLate:
		return "LATE"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures engine and widget lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityDiscovery indicates a discovery engine state change.
	StateEntityDiscovery StateEntity = 0
	// StateEntityWidget indicates a widget link state change.
	StateEntityWidget StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDiscovery:
		return "DISCOVERY"
	case StateEntityWidget:
		return "WIDGET"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
