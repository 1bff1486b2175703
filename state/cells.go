// Package state holds the two shared cells of the pipeline: the signal
// record every task reads and writes, and the tunable parameter record the
// receiver writes and the controller reads. Each cell carries its own
// lock; a task never holds both at once.
package state

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Lock is a mutex built on a one-slot channel so acquisition can be
// bounded by a timeout, which sync.Mutex cannot do.
type Lock struct {
	ch  chan struct{}
	clk clock.Clock
}

// NewLock returns an unlocked Lock.
func NewLock(clk clock.Clock) *Lock {
	if clk == nil {
		clk = clock.New()
	}
	return &Lock{ch: make(chan struct{}, 1), clk: clk}
}

// Acquire blocks until the lock is held.
func (l *Lock) Acquire() {
	l.ch <- struct{}{}
}

// AcquireWithin tries to take the lock, giving up after the timeout.
// Returns true when the lock is held.
func (l *Lock) AcquireWithin(timeout time.Duration) bool {
	t := l.clk.Timer(timeout)
	defer t.Stop()
	select {
	case l.ch <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

// Release frees the lock. Releasing an unheld lock panics.
func (l *Lock) Release() {
	select {
	case <-l.ch:
	default:
		panic("state: release of unheld lock")
	}
}

// Signals is the pipeline signal cell. Fields are only valid while the
// cell's lock is held.
type Signals struct {
	lock *Lock

	Ref float64 // reference from the signal switch
	E   float64 // error, ref - ykd
	U   float64 // PID output (digital)
	Ua  float64 // control action after the D/A hold
	Yk  float64 // plant output (analog)
	Ykd float64 // plant output after the A/D delay
}

// NewSignals returns a zeroed signal cell.
func NewSignals(clk clock.Clock) *Signals {
	return &Signals{lock: NewLock(clk)}
}

// Lock acquires the cell's lock.
func (s *Signals) Lock() { s.lock.Acquire() }

// LockFor tries to acquire the cell's lock within the timeout.
func (s *Signals) LockFor(timeout time.Duration) bool { return s.lock.AcquireWithin(timeout) }

// Unlock releases the cell's lock.
func (s *Signals) Unlock() { s.lock.Release() }

// SignalsSnapshot is a copy of the signal fields taken under lock.
type SignalsSnapshot struct {
	Ref, E, U, Ua, Yk, Ykd float64
}

// Snapshot copies every field under lock.
func (s *Signals) Snapshot() SignalsSnapshot {
	s.Lock()
	defer s.Unlock()
	return SignalsSnapshot{Ref: s.Ref, E: s.E, U: s.U, Ua: s.Ua, Yk: s.Yk, Ykd: s.Ykd}
}

// Params is the tunable parameter cell. Fields are only valid while the
// cell's lock is held.
type Params struct {
	lock *Lock

	Kp         float64
	Ki         float64
	Kd         float64
	Setpoint   float64
	SignalType int
}

// NewParams returns a parameter cell with the given initial values.
func NewParams(clk clock.Clock, kp, ki, kd, setpoint float64, signalType int) *Params {
	return &Params{lock: NewLock(clk), Kp: kp, Ki: ki, Kd: kd, Setpoint: setpoint, SignalType: signalType}
}

// Lock acquires the cell's lock.
func (p *Params) Lock() { p.lock.Acquire() }

// LockFor tries to acquire the cell's lock within the timeout.
func (p *Params) LockFor(timeout time.Duration) bool { return p.lock.AcquireWithin(timeout) }

// Unlock releases the cell's lock.
func (p *Params) Unlock() { p.lock.Release() }

// ParamsSnapshot is a copy of the parameter fields taken under lock.
type ParamsSnapshot struct {
	Kp, Ki, Kd, Setpoint float64
	SignalType           int
}

// Snapshot copies every field under lock.
func (p *Params) Snapshot() ParamsSnapshot {
	p.Lock()
	defer p.Unlock()
	return ParamsSnapshot{Kp: p.Kp, Ki: p.Ki, Kd: p.Kd, Setpoint: p.Setpoint, SignalType: p.SignalType}
}

// Set writes every field under lock.
func (p *Params) Set(kp, ki, kd, setpoint float64, signalType int) {
	p.Lock()
	defer p.Unlock()
	p.Kp, p.Ki, p.Kd = kp, ki, kd
	p.Setpoint = setpoint
	p.SignalType = signalType
}
