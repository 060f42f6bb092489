package runner

import (
	"sort"

	"github.com/rdm-protocol/rdm-go/internal/testharness/loader"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// Check compares a finished pass against the expectations.
func Check(expect loader.Expect, table []uid.UID, stats discovery.Stats) []Failure {
	var failures []Failure

	if missing, extra := diff(expect.TOD, table); len(missing) > 0 || len(extra) > 0 {
		failures = append(failures, Failure{Check: "tod", Expected: sorted(expect.TOD), Actual: sorted(table)})
	}

	counters := []struct {
		name   string
		expect *int
		actual int
	}{
		{"valid", expect.Valid, stats.Valid},
		{"collisions", expect.Collisions, stats.Collisions},
		{"no_responses", expect.NoResponses, stats.NoResponses},
		{"removed", expect.Removed, stats.Removed},
	}
	for _, c := range counters {
		if c.expect != nil && *c.expect != c.actual {
			failures = append(failures, Failure{Check: c.name, Expected: *c.expect, Actual: c.actual})
		}
	}
	return failures
}

// diff returns the UIDs of want missing from got and those of got not in want.
func diff(want, got []uid.UID) (missing, extra []uid.UID) {
	in := make(map[uid.UID]bool, len(got))
	for _, u := range got {
		in[u] = true
	}
	expected := make(map[uid.UID]bool, len(want))
	for _, u := range want {
		expected[u] = true
		if !in[u] {
			missing = append(missing, u)
		}
	}
	for _, u := range got {
		if !expected[u] {
			extra = append(extra, u)
		}
	}
	return missing, extra
}

func sorted(uids []uid.UID) []uid.UID {
	out := append([]uid.UID(nil), uids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
