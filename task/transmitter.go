package task

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/loopsim/loopsim/ipc"
	"github.com/loopsim/loopsim/state"
)

// TransmitterTask samples the pipeline signals at the communication rate
// and publishes telemetry toward the GUI. Telemetry is best-effort: a
// full queue is recorded in the timing row and the sample is not replayed.
type TransmitterTask struct {
	*core
	transport ipc.Transport
	sig       *state.Signals
	debug     bool
	start     time.Time
	sent      *atomic.Uint32
}

// NewTransmitter starts the telemetry task. With debug set the payload
// carries all six pipeline signals instead of three.
func NewTransmitter(name string, transport ipc.Transport, sig *state.Signals,
	running *atomic.Bool, freq float64, debug bool, logger golog.Logger, opts Options,
) (*TransmitterTask, error) {
	if transport == nil || sig == nil {
		return nil, errors.Errorf("task %s: transport and signal cell are required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &TransmitterTask{
		core:      c,
		transport: transport,
		sig:       sig,
		debug:     debug,
		start:     c.clk.Now(),
		sent:      atomic.NewUint32(0),
	}
	c.start(t.run)
	return t, nil
}

func (t *TransmitterTask) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.shouldRun() {
			return
		}
		t1 := t.clk.Now()

		t.sig.Lock()
		snap := state.SignalsSnapshot{
			Ref: t.sig.Ref, E: t.sig.E, U: t.sig.U,
			Ua: t.sig.Ua, Yk: t.sig.Yk, Ykd: t.sig.Ykd,
		}
		t.sig.Unlock()

		msg := ipc.DataMessage{
			Timestamp: t.clk.Now().Sub(t.start).Seconds(),
			NumValues: 3,
		}
		msg.Values[0] = snap.Ref
		msg.Values[1] = snap.U
		msg.Values[2] = snap.Yk
		if t.debug {
			msg.Values[3] = snap.E
			msg.Values[4] = snap.Ua
			msg.Values[5] = snap.Ykd
			msg.NumValues = 6
		}

		status := StatusOK
		switch err := t.transport.SendData(msg); {
		case err == nil:
			t.sent.Inc()
		case errors.Is(err, ipc.ErrWouldBlock):
			status = StatusErrQueue
		default:
			status = StatusErrQueue
			t.logger.Warnw("telemetry send failed", "task", t.name, "error", err)
		}

		t3 := t.clk.Now()
		if status == StatusOK {
			status = t.classify(t3.Sub(t0))
		}
		t.logRow(t0, t1, t3, tsReal, status)
		t.timer.Wait()
	}
}

// Sent returns how many telemetry messages were published.
func (t *TransmitterTask) Sent() uint32 {
	return t.sent.Load()
}
