// Package tod implements the Table Of Devices: the fixed-capacity set of
// UIDs confirmed on one RDM port, each carrying a mute flag.
//
// A Table is owned by one port. The discovery engine populates it during a
// pass and the command dispatcher may Delete entries in between passes; the
// caller serializes those writers.
package tod

import "github.com/rdm-protocol/rdm-go/pkg/uid"

// DefaultCapacity is the number of UIDs a table holds when built with New(0).
const DefaultCapacity = 200

// Entry is one confirmed device.
type Entry struct {
	UID   uid.UID
	Muted bool
}

// Table is an ordered, fixed-capacity set of confirmed UIDs.
type Table struct {
	entries  []Entry
	capacity int
	cursor   int
}

// New creates an empty table holding at most capacity UIDs.
// A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Reset removes every entry.
func (t *Table) Reset() {
	t.entries = t.entries[:0]
	t.cursor = 0
}

// Len returns the number of confirmed UIDs.
func (t *Table) Len() int {
	return len(t.entries)
}

// Cap returns the table capacity.
func (t *Table) Cap() int {
	return t.capacity
}

// IsFull reports whether AddUID would be refused for a new UID.
func (t *Table) IsFull() bool {
	return len(t.entries) >= t.capacity
}

// AddUID appends u unmuted. It returns false without changing the table
// when u is already present or the table is full.
func (t *Table) AddUID(u uid.UID) bool {
	if t.IsFull() || t.index(u) >= 0 {
		return false
	}
	t.entries = append(t.entries, Entry{UID: u})
	return true
}

// Exist reports whether u is in the table.
func (t *Table) Exist(u uid.UID) bool {
	return t.index(u) >= 0
}

// Next returns the entry under the wrap-around cursor and advances it.
// An empty table yields uid.Broadcast.
func (t *Table) Next() uid.UID {
	if len(t.entries) == 0 {
		return uid.Broadcast
	}
	if t.cursor >= len(t.entries) {
		t.cursor = 0
	}
	u := t.entries[t.cursor].UID
	t.cursor++
	return u
}

// Mute marks u muted. It returns false when u is unknown.
func (t *Table) Mute(u uid.UID) bool {
	return t.setMuted(u, true)
}

// UnMute clears the mute flag of u. It returns false when u is unknown.
func (t *Table) UnMute(u uid.UID) bool {
	return t.setMuted(u, false)
}

// UnMuteAll clears every mute flag.
func (t *Table) UnMuteAll() {
	for i := range t.entries {
		t.entries[i].Muted = false
	}
}

// IsMuted reports the mute flag of u. Unknown UIDs report true so that an
// unconfirmed UID is never treated as eligible.
func (t *Table) IsMuted(u uid.UID) bool {
	i := t.index(u)
	if i < 0 {
		return true
	}
	return t.entries[i].Muted
}

// Delete removes u, preserving the order of the remaining entries.
func (t *Table) Delete(u uid.UID) bool {
	i := t.index(u)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	if t.cursor > i {
		t.cursor--
	}
	return true
}

// Copy writes up to len(dst) UIDs in table order and returns the count.
func (t *Table) Copy(dst []uid.UID) int {
	n := 0
	for n < len(dst) && n < len(t.entries) {
		dst[n] = t.entries[n].UID
		n++
	}
	return n
}

// CopyBytes writes the contiguous 6-byte wire form of as many whole UIDs
// as fit in dst and returns the number of bytes written.
func (t *Table) CopyBytes(dst []byte) int {
	n := 0
	for _, e := range t.entries {
		if n+uid.Size > len(dst) {
			break
		}
		e.UID.Put(dst[n : n+uid.Size])
		n += uid.Size
	}
	return n
}

// UIDs returns a snapshot of the confirmed UIDs in table order.
func (t *Table) UIDs() []uid.UID {
	out := make([]uid.UID, len(t.entries))
	t.Copy(out)
	return out
}

// Entries returns a snapshot of the table.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) setMuted(u uid.UID, muted bool) bool {
	i := t.index(u)
	if i < 0 {
		return false
	}
	t.entries[i].Muted = muted
	return true
}

func (t *Table) index(u uid.UID) int {
	for i := range t.entries {
		if t.entries[i].UID == u {
			return i
		}
	}
	return -1
}
