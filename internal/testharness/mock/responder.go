// Package mock provides a simulated RDM bus and clock for testing discovery.
package mock

import (
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// Responder is a simulated RDM device on the bus.
type Responder struct {
	// UID is the device identifier.
	UID uid.UID

	// Muted devices ignore DISC_UNIQUE_BRANCH.
	Muted bool

	// DropMutes is the number of DISC_MUTE requests ignored before the
	// device acknowledges one. A negative value ignores all of them.
	DropMutes int

	// Silent devices never answer DISC_UNIQUE_BRANCH.
	Silent bool

	// LatencyMicros delays every reply of this device.
	LatencyMicros uint64

	// Binding is reported in mute acknowledgements when set, as by one
	// port of a multi-port responder.
	Binding uid.UID

	// Received counts the requests addressed to or heard by the device.
	Received int
}

// answersBranch reports whether the device replies to a branch probe of r.
func (r *Responder) answersBranch(rng uid.Range) bool {
	return !r.Muted && !r.Silent && rng.Contains(r.UID)
}

// handleMute applies a DISC_MUTE or DISC_UN_MUTE and returns the
// acknowledgement, or nil when the device stays quiet.
func (r *Responder) handleMute(req *rdm.Message, mute bool) []byte {
	r.Received++
	if mute {
		if r.DropMutes < 0 {
			return nil
		}
		if r.DropMutes > 0 {
			r.DropMutes--
			return nil
		}
	}
	r.Muted = mute
	if req.Destination.IsBroadcast() {
		return nil
	}
	resp := rdm.MuteResponse{}
	if r.Binding != 0 {
		resp.BindingUID = r.Binding
		resp.HasBinding = true
	}
	ack := rdm.MuteAck(req, r.UID, resp)
	data, err := ack.Encode()
	if err != nil {
		return nil
	}
	return data
}
