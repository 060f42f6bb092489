package rdm

import (
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// DUB response layout.
const (
	// PreambleByte fills the optional preamble.
	PreambleByte = 0xFE

	// PreambleSeparator ends the preamble.
	PreambleSeparator = 0xAA

	// MaxPreambleSize is the longest preamble a responder sends.
	MaxPreambleSize = 7

	// EncodedUIDSize is the size of the masked UID block.
	EncodedUIDSize = 2 * uid.Size

	// EncodedChecksumSize is the size of the masked checksum block.
	EncodedChecksumSize = 4

	// DiscoveryResponseSize is the size of a response with a full preamble.
	DiscoveryResponseSize = MaxPreambleSize + 1 + EncodedUIDSize + EncodedChecksumSize

	maskHigh = 0xAA
	maskLow  = 0x55
)

// Kind classifies a DUB response.
type Kind uint8

const (
	// NoResponse means nothing arrived; the branch is empty.
	NoResponse Kind = iota
	// Valid means exactly one responder answered.
	Valid
	// Collision means bytes arrived that do not decode to one UID.
	Collision
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NoResponse:
		return "NO_RESPONSE"
	case Valid:
		return "VALID"
	case Collision:
		return "COLLISION"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of classifying a DUB response. UID is set only
// when Kind is Valid.
type Result struct {
	Kind Kind
	UID  uid.UID
}

// EncodeDiscoveryResponse returns the response a responder with UID u sends
// to a DUB covering u, with the full seven byte preamble.
func EncodeDiscoveryResponse(u uid.UID) []byte {
	buf := make([]byte, 0, DiscoveryResponseSize)
	for i := 0; i < MaxPreambleSize; i++ {
		buf = append(buf, PreambleByte)
	}
	buf = append(buf, PreambleSeparator)

	raw := u.Bytes()
	var sum uint16
	for _, b := range raw {
		hi, lo := b|maskHigh, b|maskLow
		buf = append(buf, hi, lo)
		sum += uint16(hi) + uint16(lo)
	}

	ch, cl := byte(sum>>8), byte(sum)
	return append(buf, ch|maskHigh, ch|maskLow, cl|maskHigh, cl|maskLow)
}

// Classify reduces a received DUB response to NoResponse, Valid or Collision.
// Anything that is not a well formed single response, including truncated
// frames, is a Collision.
//
// Bytes after the checksum are ignored as long as the frame is no longer
// than DiscoveryResponseSize: some widgets forward a fixed window, padding
// a response with a short preamble. A longer frame carries another reply.
func Classify(raw []byte) Result {
	if len(raw) == 0 {
		return Result{Kind: NoResponse}
	}

	const bodySize = EncodedUIDSize + EncodedChecksumSize
	body, ok := stripPreamble(raw)
	switch {
	case !ok, len(body) < bodySize:
		return Result{Kind: Collision}
	case len(body) > bodySize && len(raw) > DiscoveryResponseSize:
		return Result{Kind: Collision}
	}
	body = body[:bodySize]

	var (
		decoded [uid.Size]byte
		sum     uint16
	)
	for i := 0; i < uid.Size; i++ {
		hi, lo := body[2*i], body[2*i+1]
		b, ok := unmask(hi, lo)
		if !ok {
			return Result{Kind: Collision}
		}
		decoded[i] = b
		sum += uint16(hi) + uint16(lo)
	}

	ch, ok := unmask(body[EncodedUIDSize], body[EncodedUIDSize+1])
	if !ok {
		return Result{Kind: Collision}
	}
	cl, ok := unmask(body[EncodedUIDSize+2], body[EncodedUIDSize+3])
	if !ok {
		return Result{Kind: Collision}
	}
	if uint16(ch)<<8|uint16(cl) != sum {
		return Result{Kind: Collision}
	}

	u, _ := uid.FromBytes(decoded[:])
	return Result{Kind: Valid, UID: u}
}

// stripPreamble skips up to MaxPreambleSize preamble bytes and the
// separator, returning the encoded body.
func stripPreamble(raw []byte) ([]byte, bool) {
	i := 0
	for i < len(raw) && i < MaxPreambleSize && raw[i] == PreambleByte {
		i++
	}
	if i >= len(raw) || raw[i] != PreambleSeparator {
		return nil, false
	}
	return raw[i+1:], true
}

// unmask recombines a masked byte pair. The pair is consistent only when
// every bit forced by each mask is actually set.
func unmask(hi, lo byte) (byte, bool) {
	if hi&maskHigh != maskHigh || lo&maskLow != maskLow {
		return 0, false
	}
	return hi & lo, true
}
