package discovery

import (
	"fmt"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// stack holds the pending branches of a search. Its capacity is fixed at
// construction; depth-first bisection never needs more than uid.Bits
// entries plus one per confirmed device, so an overflow is a bug.
type stack struct {
	items    []uid.Range
	maxDepth int
}

func newStack(capacity int) *stack {
	return &stack{items: make([]uid.Range, 0, capacity)}
}

func (s *stack) push(r uid.Range) {
	if len(s.items) == cap(s.items) {
		panic(fmt.Sprintf("discovery: branch stack overflow (capacity %d)", cap(s.items)))
	}
	s.items = append(s.items, r)
	if len(s.items) > s.maxDepth {
		s.maxDepth = len(s.items)
	}
}

// bisect pushes both halves of r so that the lower half pops first.
func (s *stack) bisect(r uid.Range) {
	lower, upper := r.Split()
	s.push(upper)
	s.push(lower)
}

func (s *stack) pop() (uid.Range, bool) {
	n := len(s.items)
	if n == 0 {
		return uid.Range{}, false
	}
	r := s.items[n-1]
	s.items = s.items[:n-1]
	return r, true
}

func (s *stack) len() int {
	return len(s.items)
}

func (s *stack) reset() {
	s.items = s.items[:0]
	s.maxDepth = 0
}

// appendQueue renders the stack bottom to top as quoted "lo-hi" entries
// separated by commas. Entries that do not fit in limit bytes are left out
// whole.
func (s *stack) appendQueue(dst []byte, limit int) []byte {
	for i, r := range s.items {
		entry := `"` + r.String() + `"`
		if i > 0 {
			entry = "," + entry
		}
		if len(dst)+len(entry) > limit {
			break
		}
		dst = append(dst, entry...)
	}
	return dst
}
