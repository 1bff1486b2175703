package task

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/loopsim/loopsim/signal"
	"github.com/loopsim/loopsim/state"
)

// SignalTask drives the reference generator. Each cycle it reads the
// requested waveform and setpoint from the parameter cell, retargets the
// switch, applies the setpoint as the selected generator's offset and
// writes the next sample into the reference field.
type SignalTask struct {
	*core
	sw     *signal.Switch
	sig    *state.Signals
	params *state.Params
}

// NewSignal starts the reference-generator task.
func NewSignal(name string, sw *signal.Switch, sig *state.Signals, params *state.Params,
	running *atomic.Bool, freq float64, logger golog.Logger, opts Options,
) (*SignalTask, error) {
	if sw == nil || sig == nil || params == nil {
		return nil, errors.Errorf("task %s: switch and both cells are required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &SignalTask{core: c, sw: sw, sig: sig, params: params}
	c.start(t.run)
	return t, nil
}

func (t *SignalTask) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.shouldRun() {
			return
		}
		t1 := t.clk.Now()

		t.params.Lock()
		signalType := t.params.SignalType
		setpoint := t.params.Setpoint
		t.params.Unlock()

		if err := t.sw.SetSelector(signalType); err != nil {
			// keep the previous waveform; the value came from the wire
			t.logger.Warnw("invalid signal selector", "task", t.name, "error", err)
		}
		t.sw.Selected().SetOffset(setpoint)
		ref := t.sw.Next()

		t.sig.Lock()
		t.sig.Ref = ref
		t.sig.Unlock()

		t3 := t.clk.Now()
		t.logRow(t0, t1, t3, tsReal, t.classify(t3.Sub(t0)))
		t.timer.Wait()
	}
}
