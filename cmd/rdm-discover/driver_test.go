package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

type fakeEngine struct {
	runs     int
	finishAt int
	stopped  bool
}

func (f *fakeEngine) Run() { f.runs++ }

func (f *fakeEngine) IsFinished() (int, bool, bool) {
	return 0, false, f.finishAt > 0 && f.runs >= f.finishAt
}

func (f *fakeEngine) Stop() bool {
	f.stopped = true
	return true
}

func TestDriveUntilFinished(t *testing.T) {
	e := &fakeEngine{finishAt: 5}
	err := drive(context.Background(), e, time.Microsecond, nil)
	assert.NoError(t, err)
	assert.Equal(t, 5, e.runs)
	assert.False(t, e.stopped)
}

func TestDriveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &fakeEngine{}
	err := drive(ctx, e, time.Millisecond, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, e.stopped)
	assert.Equal(t, 1, e.runs)
}

func TestDriveLinkLost(t *testing.T) {
	linkErr := errors.New("widget closed")
	e := &fakeEngine{}
	calls := 0
	err := drive(context.Background(), e, time.Microsecond, func() error {
		calls++
		if calls == 3 {
			return linkErr
		}
		return nil
	})
	assert.ErrorIs(t, err, linkErr)
	assert.True(t, e.stopped)
	assert.Equal(t, 3, e.runs)
}

func TestDiffUIDs(t *testing.T) {
	a, b, c := uid.New(1, 1), uid.New(1, 2), uid.New(1, 3)
	joined, left := diffUIDs([]uid.UID{a, b}, []uid.UID{b, c})
	assert.Equal(t, []uid.UID{c}, joined)
	assert.Equal(t, []uid.UID{a}, left)

	joined, left = diffUIDs([]uid.UID{a}, []uid.UID{a})
	assert.Empty(t, joined)
	assert.Empty(t, left)
}
