package mock

import (
	"fmt"
	"time"
)

// Runner is the part of the discovery engine a test loop drives.
type Runner interface {
	Run()
	IsFinished() (port int, incremental bool, ok bool)
}

// DefaultTick is the clock step between Run calls used by RunUntilFinished.
const DefaultTick = 500 * time.Microsecond

// RunUntilFinished calls Run, advancing clock by tick after each call,
// until the engine reports a finished pass. It returns the number of Run
// calls made.
func RunUntilFinished(e Runner, clock *ManualClock, tick time.Duration, limit int) (int, error) {
	for i := 1; i <= limit; i++ {
		e.Run()
		if _, _, ok := e.IsFinished(); ok {
			return i, nil
		}
		clock.Advance(tick)
	}
	return limit, fmt.Errorf("%w: %d", ErrTickLimit, limit)
}
