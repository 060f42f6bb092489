package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	path := createTestLogFile(t, discoveryCapture())

	stats, err := CollectStats(path)
	require.NoError(t, err)

	assert.Equal(t, 11, stats.TotalEvents)
	assert.Equal(t, 2, stats.EventsByLayer[log.LayerTransport])
	assert.Equal(t, 1, stats.EventsByLayer[log.LayerRDM])
	assert.Equal(t, 8, stats.EventsByLayer[log.LayerDiscovery])
	assert.Equal(t, 5, stats.EventsByCategory[log.CategoryOutcome])
	assert.Equal(t, 1, stats.Errors)

	assert.Equal(t, 1, stats.Actions[log.ActionBranch])
	assert.Equal(t, 2, stats.Actions[log.ActionAdded])
	assert.Equal(t, map[string]int{"COLLISION": 1, "VALID": 2}, stats.Outcomes)

	require.Len(t, stats.Sessions, 2)
	first := stats.Sessions["sess-aaaa-1111"]
	assert.Equal(t, 10, first.Events)
	assert.Equal(t, 1, first.Branches)
	assert.Equal(t, 2, first.Added)
	assert.Equal(t, "FINISHED", first.LastState)
	assert.Equal(t, int64(9), first.LastSeen.Sub(first.FirstSeen).Milliseconds())
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, discoveryCapture())

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	output := buf.String()

	for _, want := range []string{
		"Total Events: 11",
		"TRANSPORT:",
		"DISCOVERY:",
		"OUTCOME:",
		"COLLISION:",
		"Sessions: 2",
		"[sess-aaa] 10 events",
		"Branches: 1, added 2, removed 0",
		"Last state: FINISHED",
		"Errors: 1",
	} {
		assert.Contains(t, output, want)
	}
	assert.Less(t, strings.Index(output, "[sess-aaa]"), strings.Index(output, "[sess-bbb]"), "sessions ordered by first event")
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	assert.Contains(t, buf.String(), "Total Events: 0")
	assert.NotContains(t, buf.String(), "Time Range")
}

func TestRunStatsMissingFile(t *testing.T) {
	assert.Error(t, RunStats(filepath.Join(t.TempDir(), "missing.rlog"), &bytes.Buffer{}))
}
