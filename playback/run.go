package playback

import (
	"context"
	"time"
)

// Op is a change made to a controller from outside the goroutine running
// it.
type Op func(c *Controller)

// Run owns c until ctx is done: it ticks c at c.Interval(), reading the
// interval again after every tick, and applies the ops sent to it in
// between. An op that starts playback or changes the interval while
// playing restarts the wait for the next tick. Run returns ctx.Err(); a
// nil ops channel is never ready.
func Run(ctx context.Context, c *Controller, ops <-chan Op) error {
	t := time.NewTimer(c.Interval())
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op, ok := <-ops:
			if !ok {
				ops = nil
				continue
			}
			status, interval := c.State().Status, c.Interval()
			op(c)
			if c.State().Status == Playing &&
				(status != Playing || c.Interval() != interval) {
				t.Reset(c.Interval())
			}
		case <-t.C:
			c.Tick()
			t.Reset(c.Interval())
		}
	}
}
