package uid

import (
	"errors"
	"fmt"
)

// ErrInvertedRange indicates a range whose lower bound exceeds its upper bound.
var ErrInvertedRange = errors.New("range lower bound above upper bound")

// Range is a closed interval of UIDs. Lower <= Upper always holds for
// ranges built through NewRange, Full or Split.
type Range struct {
	Lower UID
	Upper UID
}

// NewRange returns the closed interval [lo, hi].
func NewRange(lo, hi UID) (Range, error) {
	if lo > hi {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, lo, hi)
	}
	return Range{Lower: lo, Upper: hi}, nil
}

// Full returns the complete unicast search space.
func Full() Range {
	return Range{Lower: Min, Upper: Max}
}

// Single returns the width-1 range holding only u.
func Single(u UID) Range {
	return Range{Lower: u, Upper: u}
}

// Width returns the number of UIDs in the range.
func (r Range) Width() uint64 {
	return uint64(r.Upper-r.Lower) + 1
}

// IsSingle reports whether the range holds exactly one UID.
func (r Range) IsSingle() bool {
	return r.Lower == r.Upper
}

// Contains reports whether u lies within the range.
func (r Range) Contains(u UID) bool {
	return u >= r.Lower && u <= r.Upper
}

// Mid returns the last UID of the lower half.
func (r Range) Mid() UID {
	return r.Lower + (r.Upper-r.Lower)/2
}

// Split bisects the range into [Lower, Mid] and [Mid+1, Upper].
// Split must not be called on a single-UID range.
func (r Range) Split() (lower, upper Range) {
	mid := r.Mid()
	return Range{Lower: r.Lower, Upper: mid}, Range{Lower: mid + 1, Upper: r.Upper}
}

// String renders the range as mmmm:dddddddd-mmmm:dddddddd.
func (r Range) String() string {
	return r.Lower.String() + "-" + r.Upper.String()
}
