package log

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// pidDiscUniqueBranch is the DISC_UNIQUE_BRANCH parameter ID; its request
// carries the probed range as two 6-byte UIDs.
const pidDiscUniqueBranch = 0x0001

// Filter selects capture events. Zero fields match everything.
type Filter struct {
	SessionID string
	Port      *int
	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart and TimeEnd bound the timestamps, start inclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time

	// UID keeps the events that concern one device, see Event.Concerns.
	UID *uint64
}

// Matches reports whether e passes every set criterion.
func (f *Filter) Matches(e Event) bool {
	switch {
	case f.SessionID != "" && e.SessionID != f.SessionID,
		f.Port != nil && e.Port != *f.Port,
		f.Direction != nil && e.Direction != *f.Direction,
		f.Layer != nil && e.Layer != *f.Layer,
		f.Category != nil && e.Category != *f.Category:
		return false
	case f.TimeStart != nil && e.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !e.Timestamp.Before(*f.TimeEnd):
		return false
	case f.UID != nil && !e.Concerns(*f.UID):
		return false
	}
	return true
}

// Concerns reports whether the event involves device u: it names u, is an
// RDM message to or from u, or probes a branch covering u.
func (e Event) Concerns(u uint64) bool {
	if e.UID == u {
		return true
	}
	if m := e.Message; m != nil {
		if m.Source == u || m.Destination == u {
			return true
		}
		if lo, hi, ok := m.BranchRange(); ok && lo <= u && u <= hi {
			return true
		}
	}
	if d := e.Discovery; d != nil && d.Upper != 0 {
		return d.Lower <= u && u <= d.Upper
	}
	return false
}

// BranchRange returns the range probed by a DISC_UNIQUE_BRANCH request.
func (m *MessageEvent) BranchRange() (lo, hi uint64, ok bool) {
	if m.PID != pidDiscUniqueBranch || len(m.ParamData) != 12 {
		return 0, 0, false
	}
	return uid48(m.ParamData[:6]), uid48(m.ParamData[6:]), true
}

// Reader streams the events of a .rlog file.
type Reader struct {
	f      *os.File
	dec    *cbor.Decoder
	filter Filter
}

// NewReader opens path and returns every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and returns only the events filter matches.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
func (r *Reader) Next() (Event, error) {
	for {
		var e Event
		err := r.dec.Decode(&e)
		switch {
		case errors.Is(err, io.EOF):
			return Event{}, io.EOF
		case err != nil:
			return Event{}, err
		case r.filter.Matches(e):
			return e, nil
		}
	}
}

// Close closes the file.
func (r *Reader) Close() error {
	return r.f.Close()
}

func uid48(b []byte) uint64 {
	var buf [8]byte
	copy(buf[2:], b)
	return binary.BigEndian.Uint64(buf[:])
}
