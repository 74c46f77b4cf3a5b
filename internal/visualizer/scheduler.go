package visualizer

import (
	"context"
	"time"
)

// Clock delivers frame ticks.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

type tickerClock struct {
	t *time.Ticker
}

// NewTickerClock ticks fps times per second.
func NewTickerClock(fps int) Clock {
	if fps < 1 {
		fps = 1
	}
	return &tickerClock{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (c *tickerClock) C() <-chan time.Time { return c.t.C }
func (c *tickerClock) Stop()               { c.t.Stop() }

// Scheduler runs a tick callback once per clock tick on a single goroutine.
type Scheduler struct {
	clock Clock
}

// NewScheduler wraps clock. The scheduler stops the clock when Run returns.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Run blocks, calling tick for every clock tick until ctx is cancelled or
// the clock channel closes. Cancellation is checked before each call, so no
// tick starts after cancel. Ticks never overlap: a slow tick simply delays
// the next one, and ticks missed meanwhile are dropped by the clock.
func (s *Scheduler) Run(ctx context.Context, tick func(now time.Time)) error {
	defer s.clock.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-s.clock.C():
			if !ok {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			tick(now)
		}
	}
}
