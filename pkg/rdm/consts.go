package rdm

import "fmt"

// Start codes.
const (
	// StartCode is the RDM alternate start code.
	StartCode = 0xCC

	// SubStartCode is the RDM sub start code.
	SubStartCode = 0x01
)

// CommandClass is the RDM command class byte.
type CommandClass uint8

// Command classes.
const (
	DiscoveryCommand         CommandClass = 0x10
	DiscoveryCommandResponse CommandClass = 0x11
	GetCommand               CommandClass = 0x20
	GetCommandResponse       CommandClass = 0x21
	SetCommand               CommandClass = 0x30
	SetCommandResponse       CommandClass = 0x31
)

// String returns the command class name.
func (c CommandClass) String() string {
	switch c {
	case DiscoveryCommand:
		return "DISCOVERY_COMMAND"
	case DiscoveryCommandResponse:
		return "DISCOVERY_COMMAND_RESPONSE"
	case GetCommand:
		return "GET_COMMAND"
	case GetCommandResponse:
		return "GET_COMMAND_RESPONSE"
	case SetCommand:
		return "SET_COMMAND"
	case SetCommandResponse:
		return "SET_COMMAND_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// IsResponse reports whether c is a responder-to-controller class.
func (c CommandClass) IsResponse() bool {
	return c&0x01 == 0x01
}

// PID is an RDM parameter ID.
type PID uint16

// Discovery parameter IDs.
const (
	PIDDiscUniqueBranch PID = 0x0001
	PIDDiscMute         PID = 0x0002
	PIDDiscUnMute       PID = 0x0003
)

// String returns the parameter name for discovery PIDs and hex otherwise.
func (p PID) String() string {
	switch p {
	case PIDDiscUniqueBranch:
		return "DISC_UNIQUE_BRANCH"
	case PIDDiscMute:
		return "DISC_MUTE"
	case PIDDiscUnMute:
		return "DISC_UN_MUTE"
	default:
		return fmt.Sprintf("0x%04X", uint16(p))
	}
}

// ResponseType is carried in the port ID slot of responses.
type ResponseType uint8

// Response types.
const (
	ResponseTypeAck         ResponseType = 0x00
	ResponseTypeAckTimer    ResponseType = 0x01
	ResponseTypeNackReason  ResponseType = 0x02
	ResponseTypeAckOverflow ResponseType = 0x03
)

// String returns the response type name.
func (r ResponseType) String() string {
	switch r {
	case ResponseTypeAck:
		return "ACK"
	case ResponseTypeAckTimer:
		return "ACK_TIMER"
	case ResponseTypeNackReason:
		return "NACK_REASON"
	case ResponseTypeAckOverflow:
		return "ACK_OVERFLOW"
	default:
		return "UNKNOWN"
	}
}

// Mute control field bits returned in a DISC_MUTE / DISC_UN_MUTE response.
const (
	ControlManagedProxy  uint16 = 0x0001
	ControlSubDevice     uint16 = 0x0002
	ControlBootLoader    uint16 = 0x0004
	ControlProxiedDevice uint16 = 0x0008
)
