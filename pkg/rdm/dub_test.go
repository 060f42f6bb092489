package rdm

import (
	"testing"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDiscoveryResponseLayout(t *testing.T) {
	u := uid.New(0x1234, 0x56789ABC)
	got := EncodeDiscoveryResponse(u)

	want := []byte{
		0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xAA,
		0x12 | 0xAA, 0x12 | 0x55,
		0x34 | 0xAA, 0x34 | 0x55,
		0x56 | 0xAA, 0x56 | 0x55,
		0x78 | 0xAA, 0x78 | 0x55,
		0x9A | 0xAA, 0x9A | 0x55,
		0xBC | 0xAA, 0xBC | 0x55,
	}
	// 6*0xFF + sum of raw bytes.
	sum := uint16(6*0xFF + 0x12 + 0x34 + 0x56 + 0x78 + 0x9A + 0xBC)
	want = append(want,
		byte(sum>>8)|0xAA, byte(sum>>8)|0x55,
		byte(sum)|0xAA, byte(sum)|0x55)

	assert.Equal(t, want, got)
	assert.Len(t, got, DiscoveryResponseSize)
}

func TestClassifyRoundTrip(t *testing.T) {
	uids := []uid.UID{
		0,
		uid.Max,
		uid.New(0x7FF7, 0x00000001),
		uid.New(0x4142, 0xDEADBEEF),
		uid.New(0x0000, 0xFFFFFFFF),
		uid.New(0xFFFF, 0x00000000),
	}
	for _, u := range uids {
		t.Run(u.String(), func(t *testing.T) {
			r := Classify(EncodeDiscoveryResponse(u))
			if r.Kind != Valid {
				t.Fatalf("Kind = %s, want VALID", r.Kind)
			}
			if r.UID != u {
				t.Errorf("UID = %s, want %s", r.UID, u)
			}
		})
	}
}

func TestClassifyShortPreamble(t *testing.T) {
	u := uid.New(0x0102, 0x03040506)
	full := EncodeDiscoveryResponse(u)

	for skip := 0; skip <= MaxPreambleSize; skip++ {
		r := Classify(full[skip:])
		assert.Equal(t, Valid, r.Kind, "preamble of %d bytes", MaxPreambleSize-skip)
		assert.Equal(t, u, r.UID)
	}
}

func TestClassifyPaddedWindow(t *testing.T) {
	u := uid.New(0x0102, 0x03040506)
	short := EncodeDiscoveryResponse(u)[3:]

	padded := append(append([]byte(nil), short...), 0x00, 0x00, 0xFF)
	require.Len(t, padded, DiscoveryResponseSize)
	r := Classify(padded)
	assert.Equal(t, Valid, r.Kind)
	assert.Equal(t, u, r.UID)

	over := append(padded, 0x00)
	assert.Equal(t, Collision, Classify(over).Kind)
}

// The checksum covers the masked bytes as sent, not the raw UID bytes.
func TestClassifyRejectsRawByteChecksum(t *testing.T) {
	u := uid.New(0x1234, 0x56789ABC)
	frame := EncodeDiscoveryResponse(u)

	var raw uint16
	for _, b := range u.Bytes() {
		raw += uint16(b)
	}
	n := len(frame)
	ch, cl := byte(raw>>8), byte(raw)
	frame[n-4], frame[n-3], frame[n-2], frame[n-1] = ch|0xAA, ch|0x55, cl|0xAA, cl|0x55

	assert.Equal(t, Collision, Classify(frame).Kind)
}

func TestClassifyNoResponse(t *testing.T) {
	assert.Equal(t, NoResponse, Classify(nil).Kind)
	assert.Equal(t, NoResponse, Classify([]byte{}).Kind)
}

func TestClassifyCollision(t *testing.T) {
	a := EncodeDiscoveryResponse(uid.New(0x1234, 0x00000010))
	b := EncodeDiscoveryResponse(uid.New(0x1234, 0x00000020))

	brokenMask := append([]byte(nil), a...)
	brokenMask[8+10] &^= 0x80 // high mask bit of the last UID byte

	badChecksum := append([]byte(nil), a...)
	badChecksum[len(badChecksum)-1] ^= 0x02

	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated", a[:len(a)-3]},
		{"preamble only", a[:8]},
		{"no separator", []byte{0xFE, 0xFE, 0xFE}},
		{"noise", []byte{0x00, 0x13, 0x37}},
		{"broken mask pair", brokenMask},
		{"checksum mismatch", badChecksum},
		{"trailing bytes", append(append([]byte(nil), a...), 0x00)},
		{"long preamble", append([]byte{0xFE}, a...)},
		{"two back to back", append(append([]byte(nil), a...), b...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.raw).Kind; got != Collision {
				t.Errorf("Classify() = %s, want COLLISION", got)
			}
		})
	}
}

func TestClassifyInterleavedResponses(t *testing.T) {
	a := EncodeDiscoveryResponse(uid.New(0x0001, 0x000000F0))
	b := EncodeDiscoveryResponse(uid.New(0x0001, 0x0000000F))

	// Take the 0xAA-masked byte of each pair from one responder and the
	// 0x55-masked byte from the other, then corrupt the pair where the two
	// responders disagree the way a UART framing error would.
	mixed := make([]byte, len(a))
	copy(mixed, a)
	for i := 8; i+1 < len(a); i += 2 {
		mixed[i], mixed[i+1] = a[i], b[i+1]
		if a[i] != b[i] {
			mixed[i] = a[i] & b[i] &^ 0x80
		}
	}
	require.NotEqual(t, a, mixed)
	assert.Equal(t, Collision, Classify(mixed).Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NO_RESPONSE", NoResponse.String())
	assert.Equal(t, "VALID", Valid.String())
	assert.Equal(t, "COLLISION", Collision.String())
	assert.Equal(t, "UNKNOWN", Kind(9).String())
}
