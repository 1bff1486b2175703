package task

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/loopsim/loopsim/block"
	"github.com/loopsim/loopsim/state"
)

// PIDTask runs the controller. Unlike the other tasks it never blocks
// indefinitely on a cell: parameter reads and the signal-cell accesses use
// a bounded wait of a fraction of the period. On a parameter timeout the
// last-read gains are reused; on an output timeout the write is dropped
// and the previous control action stays applied downstream.
type PIDTask struct {
	*core
	pid    *block.PID
	sig    *state.Signals
	params *state.Params

	cached state.ParamsSnapshot
}

// NewPID starts the controller task.
func NewPID(name string, pid *block.PID, sig *state.Signals, params *state.Params,
	running *atomic.Bool, freq float64, logger golog.Logger, opts Options,
) (*PIDTask, error) {
	if pid == nil || sig == nil || params == nil {
		return nil, errors.Errorf("task %s: pid block and both cells are required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &PIDTask{core: c, pid: pid, sig: sig, params: params}
	t.cached = params.Snapshot()
	c.start(t.run)
	return t, nil
}

func (t *PIDTask) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.shouldRun() {
			return
		}
		status := StatusOK
		t1 := t.clk.Now()

		if t.params.LockFor(t.timeout) {
			t.cached = state.ParamsSnapshot{
				Kp: t.params.Kp, Ki: t.params.Ki, Kd: t.params.Kd,
				Setpoint: t.params.Setpoint, SignalType: t.params.SignalType,
			}
			t.params.Unlock()
		} else {
			status = StatusErrMutex
			t.logger.Warnw("parameter lock timed out, reusing cached gains", "task", t.name)
		}
		t.pid.SetGains(t.cached.Kp, t.cached.Ki, t.cached.Kd)

		if !t.sig.LockFor(t.timeout) {
			// no input this cycle; skip the step entirely
			t3 := t.clk.Now()
			t.logger.Warnw("signal lock timed out on entry, skipping cycle", "task", t.name)
			t.logRow(t0, t1, t3, tsReal, StatusErrMutex)
			t.timer.Wait()
			continue
		}
		e := t.sig.E
		t.sig.Unlock()

		u, err := t.pid.Step(e)
		if err != nil {
			t.logger.Errorw("pid step failed", "task", t.name, "error", err)
		} else if t.sig.LockFor(t.timeout) {
			t.sig.U = u
			t.sig.Unlock()
		} else {
			status = StatusErrMutex
			t.logger.Warnw("signal lock timed out on exit, control write dropped", "task", t.name)
		}

		t3 := t.clk.Now()
		if status == StatusOK {
			status = t.classify(t3.Sub(t0))
		}
		t.logRow(t0, t1, t3, tsReal, status)
		t.timer.Wait()
	}
}

// Gains returns the gains most recently applied to the controller.
func (t *PIDTask) Gains() state.ParamsSnapshot {
	kp, ki, kd := t.pid.Gains()
	return state.ParamsSnapshot{Kp: kp, Ki: ki, Kd: kd}
}
