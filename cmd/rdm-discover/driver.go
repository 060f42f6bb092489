package main

import (
	"context"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/discovery"
)

// engine is the part of discovery.Engine the driver loop uses.
type engine interface {
	Run()
	IsFinished() (port int, incremental bool, ok bool)
	Stop() bool
}

// drive ticks e every interval until the pass finishes. A cancelled
// context stops the pass; a failed link ends it with linkErr's error.
func drive(ctx context.Context, e engine, interval time.Duration, linkErr func() error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		e.Run()
		if _, _, ok := e.IsFinished(); ok {
			return nil
		}
		if linkErr != nil {
			if err := linkErr(); err != nil {
				e.Stop()
				return err
			}
		}

		select {
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ engine = (*discovery.Engine)(nil)
