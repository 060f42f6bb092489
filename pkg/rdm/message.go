package rdm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// Message layout constants.
const (
	// HeaderSize is the number of bytes from the start code through the
	// parameter data length slot.
	HeaderSize = 24

	// ChecksumSize is the size of the trailing checksum.
	ChecksumSize = 2

	// MaxParamDataSize is the largest parameter data block.
	MaxParamDataSize = 231

	// MinMessageSize is the size of a message without parameter data.
	MinMessageSize = HeaderSize + ChecksumSize
)

// Message errors.
var (
	// ErrShortMessage indicates fewer bytes than the header announces.
	ErrShortMessage = errors.New("rdm message too short")

	// ErrBadStartCode indicates a missing 0xCC 0x01 prefix.
	ErrBadStartCode = errors.New("rdm bad start code")

	// ErrBadLength indicates an inconsistent message length slot.
	ErrBadLength = errors.New("rdm bad message length")

	// ErrBadChecksum indicates a checksum mismatch.
	ErrBadChecksum = errors.New("rdm bad checksum")

	// ErrParamDataTooLarge indicates parameter data beyond MaxParamDataSize.
	ErrParamDataTooLarge = errors.New("rdm parameter data too large")
)

// Message is a decoded RDM request or response.
type Message struct {
	Destination       uid.UID
	Source            uid.UID
	TransactionNumber uint8

	// PortID holds the port ID in requests and the response type in responses.
	PortID       uint8
	MessageCount uint8
	SubDevice    uint16
	CommandClass CommandClass
	PID          PID
	ParamData    []byte
}

// ResponseType interprets the port ID slot of a response.
func (m *Message) ResponseType() ResponseType {
	return ResponseType(m.PortID)
}

// Encode serializes the message including start codes and checksum.
func (m *Message) Encode() ([]byte, error) {
	if len(m.ParamData) > MaxParamDataSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrParamDataTooLarge, len(m.ParamData), MaxParamDataSize)
	}

	length := HeaderSize + len(m.ParamData)
	buf := make([]byte, length+ChecksumSize)

	buf[0] = StartCode
	buf[1] = SubStartCode
	buf[2] = byte(length)
	m.Destination.Put(buf[3:9])
	m.Source.Put(buf[9:15])
	buf[15] = m.TransactionNumber
	buf[16] = m.PortID
	buf[17] = m.MessageCount
	binary.BigEndian.PutUint16(buf[18:20], m.SubDevice)
	buf[20] = byte(m.CommandClass)
	binary.BigEndian.PutUint16(buf[21:23], uint16(m.PID))
	buf[23] = byte(len(m.ParamData))
	copy(buf[HeaderSize:], m.ParamData)

	binary.BigEndian.PutUint16(buf[length:], Checksum(buf[:length]))
	return buf, nil
}

// Decode parses a complete RDM message beginning with the start code.
// Trailing bytes after the checksum are ignored.
func Decode(data []byte) (*Message, error) {
	if len(data) < MinMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortMessage, len(data))
	}
	if data[0] != StartCode || data[1] != SubStartCode {
		return nil, fmt.Errorf("%w: %02x %02x", ErrBadStartCode, data[0], data[1])
	}

	length := int(data[2])
	if length < HeaderSize || int(data[23]) != length-HeaderSize {
		return nil, fmt.Errorf("%w: length %d, pdl %d", ErrBadLength, length, data[23])
	}
	if len(data) < length+ChecksumSize {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrShortMessage, len(data), length+ChecksumSize)
	}

	want := binary.BigEndian.Uint16(data[length:])
	if got := Checksum(data[:length]); got != want {
		return nil, fmt.Errorf("%w: got %04x, want %04x", ErrBadChecksum, got, want)
	}

	m := &Message{
		Destination:       decodeUID(data[3:9]),
		Source:            decodeUID(data[9:15]),
		TransactionNumber: data[15],
		PortID:            data[16],
		MessageCount:      data[17],
		SubDevice:         binary.BigEndian.Uint16(data[18:20]),
		CommandClass:      CommandClass(data[20]),
		PID:               PID(binary.BigEndian.Uint16(data[21:23])),
	}
	if pdl := length - HeaderSize; pdl > 0 {
		m.ParamData = append([]byte(nil), data[HeaderSize:length]...)
	}
	return m, nil
}

// Checksum is the 16-bit additive sum used by RDM messages.
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

func decodeUID(b []byte) uid.UID {
	u, _ := uid.FromBytes(b)
	return u
}

// DiscUniqueBranch builds a broadcast DISC_UNIQUE_BRANCH request for r.
func DiscUniqueBranch(src uid.UID, port, tn uint8, r uid.Range) Message {
	pd := make([]byte, 2*uid.Size)
	r.Lower.Put(pd[:uid.Size])
	r.Upper.Put(pd[uid.Size:])
	return Message{
		Destination:       uid.Broadcast,
		Source:            src,
		TransactionNumber: tn,
		PortID:            port,
		CommandClass:      DiscoveryCommand,
		PID:               PIDDiscUniqueBranch,
		ParamData:         pd,
	}
}

// DiscMute builds a DISC_MUTE request addressed to dst.
func DiscMute(src, dst uid.UID, port, tn uint8) Message {
	return discovery(src, dst, port, tn, PIDDiscMute)
}

// DiscUnMute builds a DISC_UN_MUTE request addressed to dst, which is
// usually uid.Broadcast.
func DiscUnMute(src, dst uid.UID, port, tn uint8) Message {
	return discovery(src, dst, port, tn, PIDDiscUnMute)
}

func discovery(src, dst uid.UID, port, tn uint8, pid PID) Message {
	return Message{
		Destination:       dst,
		Source:            src,
		TransactionNumber: tn,
		PortID:            port,
		CommandClass:      DiscoveryCommand,
		PID:               pid,
	}
}

// BranchRange extracts the searched range from a DISC_UNIQUE_BRANCH request.
func BranchRange(m *Message) (uid.Range, error) {
	if m.PID != PIDDiscUniqueBranch || len(m.ParamData) != 2*uid.Size {
		return uid.Range{}, fmt.Errorf("%w: not a unique branch request", ErrBadLength)
	}
	return uid.NewRange(decodeUID(m.ParamData[:uid.Size]), decodeUID(m.ParamData[uid.Size:]))
}

// MuteResponse is the parameter data of a DISC_MUTE / DISC_UN_MUTE response.
type MuteResponse struct {
	Control    uint16
	BindingUID uid.UID
	HasBinding bool
}

// MuteAck builds the response a responder sends to a DISC_MUTE or
// DISC_UN_MUTE request.
func MuteAck(req *Message, self uid.UID, resp MuteResponse) Message {
	pd := make([]byte, 2, 2+uid.Size)
	binary.BigEndian.PutUint16(pd, resp.Control)
	if resp.HasBinding {
		var b [uid.Size]byte
		resp.BindingUID.Put(b[:])
		pd = append(pd, b[:]...)
	}
	return Message{
		Destination:       req.Source,
		Source:            self,
		TransactionNumber: req.TransactionNumber,
		PortID:            uint8(ResponseTypeAck),
		CommandClass:      DiscoveryCommandResponse,
		PID:               req.PID,
		ParamData:         pd,
	}
}

// ParseMuteResponse decodes the control field and optional binding UID.
func ParseMuteResponse(m *Message) (MuteResponse, error) {
	switch len(m.ParamData) {
	case 0:
		// Some early responders ack without parameter data.
		return MuteResponse{}, nil
	case 2:
		return MuteResponse{Control: binary.BigEndian.Uint16(m.ParamData)}, nil
	case 2 + uid.Size:
		return MuteResponse{
			Control:    binary.BigEndian.Uint16(m.ParamData),
			BindingUID: decodeUID(m.ParamData[2:]),
			HasBinding: true,
		}, nil
	default:
		return MuteResponse{}, fmt.Errorf("%w: mute response pdl %d", ErrBadLength, len(m.ParamData))
	}
}

// IsMuteAck reports whether raw is a DISC_MUTE acknowledgement sent by from.
func IsMuteAck(raw []byte, from uid.UID) bool {
	return isDiscoveryAck(raw, from, PIDDiscMute)
}

func isDiscoveryAck(raw []byte, from uid.UID, pid PID) bool {
	m, err := Decode(raw)
	if err != nil {
		return false
	}
	return m.CommandClass == DiscoveryCommandResponse &&
		m.PID == pid &&
		m.Source == from &&
		m.ResponseType() == ResponseTypeAck
}
