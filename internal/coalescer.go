package internal

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
)

// Coalescer converts a potentially high-frequency stream of raw events
// into a lower-frequency stream of fire decisions.
//
// Two timing policies compose: debounce delays the first fire of a burst
// until the events go quiet, throttle spaces the fires that follow. The
// representative event of a fire is always the newest event observed in
// the window; earlier events in the same window are discarded.
//
// The coalescer is not safe for concurrent use. The controller calls it
// from a single goroutine, and an event racing a timer expiry is handled
// in whichever order that loop receives them: processed after the expiry,
// the event opens a new window.
type Coalescer struct {
	debounce time.Duration
	throttle time.Duration
	clock    clock.Clock
	logger   *log.Logger

	pending    *RawEvent
	timer      *clock.Timer
	throttling bool
}

func NewCoalescer(debounce, throttle time.Duration, clk clock.Clock, logger *log.Logger) *Coalescer {
	return &Coalescer{
		debounce: debounce,
		throttle: throttle,
		clock:    clk,
		logger:   logger,
	}
}

// C returns the channel of the currently armed timer, or nil when no
// window is open. A nil channel blocks forever in a select, so the
// controller can use C directly as a select case.
func (c *Coalescer) C() <-chan time.Time {
	if c.timer == nil {
		return nil
	}
	return c.timer.C
}

// Observe ingests one raw event. It returns the representative event and
// true when a run should be dispatched right now; otherwise the event is
// held as the pending representative of the open window.
func (c *Coalescer) Observe(ev RawEvent) (RawEvent, bool) {
	if !ev.Kind.Valid() {
		c.logger.Warn("Dropping event with unrecognized kind", "path", ev.Path)
		return RawEvent{}, false
	}

	if c.throttling {
		// Inside a throttle window fires are suppressed; the newest
		// event wins the slot for the end of the window.
		c.pending = &ev
		return RawEvent{}, false
	}

	if c.debounce > 0 {
		c.pending = &ev
		c.arm(c.debounce)
		return RawEvent{}, false
	}

	c.fired()
	return ev, true
}

// Expire handles a timer expiry. It returns the representative event and
// true when the closed window produces a fire. Calling it without an open
// window is a no-op, so stale wakeups are harmless.
func (c *Coalescer) Expire() (RawEvent, bool) {
	if c.timer == nil {
		return RawEvent{}, false
	}

	if c.throttling {
		if c.pending == nil {
			// Quiet throttle window: back to idle.
			c.throttling = false
			c.disarm()
			return RawEvent{}, false
		}
		ev := *c.pending
		c.pending = nil
		c.arm(c.throttle)
		return ev, true
	}

	if c.pending == nil {
		c.disarm()
		return RawEvent{}, false
	}
	ev := *c.pending
	c.fired()
	return ev, true
}

// Stop cancels any open window. Used when the watch session ends.
func (c *Coalescer) Stop() {
	c.disarm()
	c.pending = nil
	c.throttling = false
}

// fired records that a run was just dispatched: the pending slot clears
// and, when throttling is configured, the suppression window opens.
func (c *Coalescer) fired() {
	c.pending = nil
	if c.throttle > 0 {
		c.throttling = true
		c.arm(c.throttle)
		return
	}
	c.throttling = false
	c.disarm()
}

func (c *Coalescer) arm(d time.Duration) {
	if c.timer == nil {
		c.timer = c.clock.Timer(d)
		return
	}
	// Drain a tick that fired between the last select and this reset so
	// the old expiry cannot leak into the new window.
	if !c.timer.Stop() {
		select {
		case <-c.timer.C:
		default:
		}
	}
	c.timer.Reset(d)
}

func (c *Coalescer) disarm() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
