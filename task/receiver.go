package task

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/loopsim/loopsim/ipc"
	"github.com/loopsim/loopsim/state"
)

// ReceiverTask polls the transport for parameter updates at the
// communication rate and writes arrivals into the parameter cell. An
// empty queue is the normal case, not an error.
type ReceiverTask struct {
	*core
	transport ipc.Transport
	params    *state.Params
	received  *atomic.Uint32
}

// NewReceiver starts the parameter-receiver task.
func NewReceiver(name string, transport ipc.Transport, params *state.Params,
	running *atomic.Bool, freq float64, logger golog.Logger, opts Options,
) (*ReceiverTask, error) {
	if transport == nil || params == nil {
		return nil, errors.Errorf("task %s: transport and parameter cell are required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &ReceiverTask{core: c, transport: transport, params: params, received: atomic.NewUint32(0)}
	c.start(t.run)
	return t, nil
}

func (t *ReceiverTask) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.shouldRun() {
			return
		}
		t1 := t.clk.Now()

		switch m, err := t.transport.ReceiveParams(); {
		case err == nil:
			t.params.Set(m.Kp, m.Ki, m.Kd, m.Setpoint, int(m.SignalType))
			t.received.Inc()
			t.logger.Debugw("parameters updated",
				"task", t.name, "kp", m.Kp, "ki", m.Ki, "kd", m.Kd,
				"setpoint", m.Setpoint, "signal_type", m.SignalType)
		case errors.Is(err, ipc.ErrWouldBlock):
			// nothing arrived this period
		default:
			t.logger.Warnw("parameter receive failed", "task", t.name, "error", err)
		}

		t3 := t.clk.Now()
		t.logRow(t0, t1, t3, tsReal, t.classify(t3.Sub(t0)))
		t.timer.Wait()
	}
}

// Received returns how many parameter messages were applied.
func (t *ReceiverTask) Received() uint32 {
	return t.received.Load()
}
