package uid

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// UID constants.
const (
	// Size is the wire size of a UID in bytes.
	Size = 6

	// Bits is the number of significant bits in a UID.
	Bits = 48

	// Broadcast is the all-ones UID addressing every responder.
	Broadcast UID = 0xFFFFFFFFFFFF

	// Max is the highest unicast UID and the upper bound of a full search.
	Max UID = 0xFFFFFFFFFFFE

	// Min is the lowest UID.
	Min UID = 0
)

// UID errors.
var (
	// ErrInvalidLength indicates a byte slice that is not Size bytes long.
	ErrInvalidLength = errors.New("invalid uid length")

	// ErrInvalidFormat indicates an unparsable UID string.
	ErrInvalidFormat = errors.New("invalid uid format")
)

// UID is a 48-bit RDM unique identifier stored in the low bits of a uint64.
type UID uint64

// New builds a UID from its manufacturer and device parts.
func New(manufacturer uint16, device uint32) UID {
	return UID(uint64(manufacturer)<<32 | uint64(device))
}

// FromBytes decodes a big-endian 6-byte UID.
func FromBytes(b []byte) (UID, error) {
	if len(b) != Size {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, len(b))
	}
	return decode(b), nil
}

func decode(b []byte) UID {
	var v uint64
	for i := 0; i < Size; i++ {
		v = v<<8 | uint64(b[i])
	}
	return UID(v)
}

// Manufacturer returns the ESTA manufacturer ID.
func (u UID) Manufacturer() uint16 {
	return uint16(u >> 32)
}

// Device returns the device ID.
func (u UID) Device() uint32 {
	return uint32(u)
}

// IsBroadcast reports whether u addresses all responders.
func (u UID) IsBroadcast() bool {
	return u&Broadcast == Broadcast
}

// Bytes returns the big-endian wire form.
func (u UID) Bytes() [Size]byte {
	var b [Size]byte
	u.Put(b[:])
	return b
}

// Put writes the big-endian wire form into b, which must hold Size bytes.
func (u UID) Put(b []byte) {
	_ = b[Size-1]
	for i := Size - 1; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
}

// String renders the UID as mmmm:dddddddd.
func (u UID) String() string {
	return fmt.Sprintf("%04x:%08x", u.Manufacturer(), u.Device())
}

// Parse accepts "mmmm:dddddddd" or twelve hex digits.
func Parse(s string) (UID, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if len(clean) != 2*Size {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return decode(b), nil
}

// MarshalText implements encoding.TextMarshaler.
func (u UID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UID) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}
