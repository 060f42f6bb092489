package tod

import (
	"testing"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
	"github.com/stretchr/testify/assert"
)

func TestNewDefaultCapacity(t *testing.T) {
	if got := New(0).Cap(); got != DefaultCapacity {
		t.Errorf("Cap() = %d, want %d", got, DefaultCapacity)
	}
}

func TestAddUID(t *testing.T) {
	tbl := New(4)
	a := uid.New(1, 1)

	if !tbl.AddUID(a) {
		t.Fatal("AddUID(a) = false, want true")
	}
	if tbl.AddUID(a) {
		t.Error("AddUID(duplicate) = true, want false")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
	if tbl.IsMuted(a) {
		t.Error("newly added UID should be unmuted")
	}
}

func TestAddUIDCapacityBoundary(t *testing.T) {
	tbl := New(2)
	a, b, c := uid.New(1, 1), uid.New(1, 2), uid.New(1, 3)
	tbl.AddUID(a)
	tbl.AddUID(b)
	tbl.Mute(a)

	before := tbl.Entries()
	if tbl.AddUID(c) {
		t.Error("AddUID on a full table = true, want false")
	}
	assert.Equal(t, before, tbl.Entries())
	assert.True(t, tbl.IsFull())
	assert.False(t, tbl.Exist(c))
}

func TestIsMutedUnknown(t *testing.T) {
	tbl := New(2)
	if !tbl.IsMuted(uid.New(9, 9)) {
		t.Error("IsMuted(unknown) = false, want true")
	}
	if tbl.Mute(uid.New(9, 9)) {
		t.Error("Mute(unknown) = true, want false")
	}
}

func TestMuteUnMute(t *testing.T) {
	tbl := New(4)
	a, b := uid.New(1, 1), uid.New(1, 2)
	tbl.AddUID(a)
	tbl.AddUID(b)

	tbl.Mute(a)
	tbl.Mute(b)
	assert.True(t, tbl.IsMuted(a))
	assert.True(t, tbl.IsMuted(b))

	tbl.UnMute(a)
	assert.False(t, tbl.IsMuted(a))
	assert.True(t, tbl.IsMuted(b))

	tbl.UnMuteAll()
	assert.False(t, tbl.IsMuted(b))
}

func TestNextWrapsAround(t *testing.T) {
	tbl := New(4)
	if got := tbl.Next(); got != uid.Broadcast {
		t.Errorf("Next() on empty table = %s, want broadcast", got)
	}

	a, b := uid.New(1, 1), uid.New(1, 2)
	tbl.AddUID(a)
	tbl.AddUID(b)

	want := []uid.UID{a, b, a, b}
	for i, w := range want {
		if got := tbl.Next(); got != w {
			t.Errorf("Next() #%d = %s, want %s", i, got, w)
		}
	}
}

func TestDelete(t *testing.T) {
	tbl := New(4)
	a, b, c := uid.New(1, 1), uid.New(1, 2), uid.New(1, 3)
	tbl.AddUID(a)
	tbl.AddUID(b)
	tbl.AddUID(c)

	tbl.Next() // a
	tbl.Next() // b

	if !tbl.Delete(a) {
		t.Fatal("Delete(a) = false, want true")
	}
	if tbl.Delete(a) {
		t.Error("second Delete(a) = true, want false")
	}
	assert.Equal(t, []uid.UID{b, c}, tbl.UIDs())

	// Cursor keeps pointing past b.
	if got := tbl.Next(); got != c {
		t.Errorf("Next() after delete = %s, want %s", got, c)
	}
}

func TestReset(t *testing.T) {
	tbl := New(4)
	tbl.AddUID(uid.New(1, 1))
	tbl.Mute(uid.New(1, 1))
	tbl.Reset()
	assert.Equal(t, 0, tbl.Len())
	assert.False(t, tbl.Exist(uid.New(1, 1)))
}

func TestCopy(t *testing.T) {
	tbl := New(4)
	a, b := uid.New(0x0102, 0x03040506), uid.New(0x1112, 0x13141516)
	tbl.AddUID(a)
	tbl.AddUID(b)

	dst := make([]uid.UID, 1)
	if n := tbl.Copy(dst); n != 1 || dst[0] != a {
		t.Errorf("Copy(len 1) = %d %v, want 1 [%s]", n, dst, a)
	}

	buf := make([]byte, 10)
	if n := tbl.CopyBytes(buf); n != 6 {
		t.Errorf("CopyBytes(10 bytes) = %d, want 6", n)
	}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, buf[:6])

	buf = make([]byte, 12)
	assert.Equal(t, 12, tbl.CopyBytes(buf))
	assert.Equal(t, []byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16}, buf[6:])
}
