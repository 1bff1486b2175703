// Package timing provides the drift-free periodic timer used by every
// task loop. Successive deadlines are t0, t0+T, t0+2T, ... so per-cycle
// work below T never accumulates error.
package timing

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Timer sleeps until absolute deadlines on a monotonic clock. If a cycle
// overruns its period the next Wait returns immediately and the schedule
// catches up from the planned deadline, not from now.
type Timer struct {
	clk    clock.Clock
	next   time.Time
	period time.Duration
}

// New builds a timer firing at the given frequency in Hz. The current
// instant becomes the first deadline anchor.
func New(frequency float64, clk clock.Clock) (*Timer, error) {
	if frequency <= 0 {
		return nil, errors.Errorf("timer frequency must be > 0, got %f", frequency)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Timer{
		clk:    clk,
		next:   clk.Now(),
		period: time.Duration(1e9 / frequency),
	}, nil
}

// NewFromPeriod builds a timer from a sampling period in seconds.
func NewFromPeriod(ts float64, clk clock.Clock) (*Timer, error) {
	if ts <= 0 {
		return nil, errors.Errorf("timer period must be > 0, got %f", ts)
	}
	return New(1.0/ts, clk)
}

// Period returns the configured period.
func (t *Timer) Period() time.Duration {
	return t.period
}

// Wait advances the deadline by one period and sleeps until it. When the
// deadline is already past it returns without sleeping.
func (t *Timer) Wait() {
	t.next = t.next.Add(t.period)
	if d := t.next.Sub(t.clk.Now()); d > 0 {
		t.clk.Sleep(d)
	}
}

// Reset re-anchors the schedule to the current instant. Useful after a
// mode change or a long non-periodic operation.
func (t *Timer) Reset() {
	t.next = t.clk.Now()
}
