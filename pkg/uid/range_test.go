package uid

import (
	"errors"
	"testing"
)

func TestNewRangeRejectsInverted(t *testing.T) {
	if _, err := NewRange(5, 4); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("NewRange(5, 4) error = %v, want ErrInvertedRange", err)
	}
	r, err := NewRange(4, 4)
	if err != nil {
		t.Fatalf("NewRange(4, 4) failed: %v", err)
	}
	if !r.IsSingle() {
		t.Error("NewRange(4, 4) should be a single-UID range")
	}
}

func TestFullRange(t *testing.T) {
	r := Full()
	if r.Lower != 0 || r.Upper != Max {
		t.Errorf("Full() = %s, want 0000:00000000-ffff:fffffffe", r)
	}
	if r.Width() != uint64(Max)+1 {
		t.Errorf("Full().Width() = %d, want %d", r.Width(), uint64(Max)+1)
	}
	if r.Contains(Broadcast) {
		t.Error("full search range must not contain the broadcast UID")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		r     Range
		lower Range
		upper Range
	}{
		{"pair", Range{10, 11}, Range{10, 10}, Range{11, 11}},
		{"odd width", Range{0, 2}, Range{0, 1}, Range{2, 2}},
		{"even width", Range{0, 3}, Range{0, 1}, Range{2, 3}},
		{"full", Full(), Range{0, 0x7FFFFFFFFFFF}, Range{0x800000000000, Max}},
		{"top", Range{Max - 1, Max}, Range{Max - 1, Max - 1}, Range{Max, Max}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.r.Split()
			if lo != tt.lower {
				t.Errorf("lower = %s, want %s", lo, tt.lower)
			}
			if hi != tt.upper {
				t.Errorf("upper = %s, want %s", hi, tt.upper)
			}
			if lo.Width()+hi.Width() != tt.r.Width() {
				t.Errorf("halves cover %d UIDs, want %d", lo.Width()+hi.Width(), tt.r.Width())
			}
		})
	}
}

func TestSplitDepthBound(t *testing.T) {
	// Always following one half must reach width 1 within Bits splits.
	r := Full()
	depth := 0
	for !r.IsSingle() {
		_, r = r.Split()
		depth++
	}
	if depth > Bits {
		t.Errorf("depth = %d, want <= %d", depth, Bits)
	}
}

func TestRangeString(t *testing.T) {
	r := Range{New(1, 2), New(3, 4)}
	want := "0001:00000002-0003:00000004"
	if r.String() != want {
		t.Errorf("String() = %q, want %q", r.String(), want)
	}
}
