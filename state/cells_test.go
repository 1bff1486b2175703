package state

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestLockBasics(t *testing.T) {
	l := NewLock(nil)
	l.Acquire()
	l.Release()

	test.That(t, l.AcquireWithin(10*time.Millisecond), test.ShouldBeTrue)
	l.Release()
}

func TestLockBoundedWaitTimesOut(t *testing.T) {
	l := NewLock(nil)
	l.Acquire()

	start := time.Now()
	ok := l.AcquireWithin(20 * time.Millisecond)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, time.Since(start), test.ShouldBeGreaterThanOrEqualTo, 15*time.Millisecond)

	l.Release()
	test.That(t, l.AcquireWithin(20*time.Millisecond), test.ShouldBeTrue)
	l.Release()
}

func TestLockReleaseUnheldPanics(t *testing.T) {
	defer func() {
		test.That(t, recover(), test.ShouldNotBeNil)
	}()
	NewLock(nil).Release()
}

func TestSignalsSnapshot(t *testing.T) {
	s := NewSignals(nil)

	s.Lock()
	s.Ref, s.E, s.U, s.Ua, s.Yk, s.Ykd = 1, 2, 3, 4, 5, 6
	s.Unlock()

	snap := s.Snapshot()
	test.That(t, snap, test.ShouldResemble, SignalsSnapshot{Ref: 1, E: 2, U: 3, Ua: 4, Yk: 5, Ykd: 6})
}

func TestParamsSetAndSnapshot(t *testing.T) {
	p := NewParams(nil, 1, 0, 0, 0.5, 0)
	test.That(t, p.Snapshot(), test.ShouldResemble, ParamsSnapshot{Kp: 1, Setpoint: 0.5})

	p.Set(2, 0.7, 0.1, 1.5, 2)
	test.That(t, p.Snapshot(), test.ShouldResemble,
		ParamsSnapshot{Kp: 2, Ki: 0.7, Kd: 0.1, Setpoint: 1.5, SignalType: 2})
}

func TestSignalsConcurrentWriters(t *testing.T) {
	s := NewSignals(nil)
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 1000; j++ {
				s.Lock()
				s.U++
				s.Unlock()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	test.That(t, s.Snapshot().U, test.ShouldEqual, 4000)
}
