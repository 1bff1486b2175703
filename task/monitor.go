package task

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/loopsim/loopsim/interrupt"
)

// RunSource is the user-level run/stop input polled by the monitor task.
type RunSource interface {
	// Running reports whether the user still wants the loop running.
	Running() bool
}

// RunSourceFunc adapts a function to a RunSource.
type RunSourceFunc func() bool

// Running calls the wrapped function.
func (f RunSourceFunc) Running() bool { return f() }

// MonitorTask polls the run/stop source at a low rate. On a stop
// transition, or when the process receives an interrupt or terminate
// signal, it clears the shared run flag and exits; every other task then
// observes the cleared flag within one of its periods.
type MonitorTask struct {
	*core
	source RunSource
}

// NewMonitor starts the run/stop monitor task.
func NewMonitor(name string, source RunSource, running *atomic.Bool,
	freq float64, logger golog.Logger, opts Options,
) (*MonitorTask, error) {
	if source == nil {
		return nil, errors.Errorf("task %s: run source is required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &MonitorTask{core: c, source: source}
	c.start(t.run)
	return t, nil
}

func (t *MonitorTask) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.running.Load() {
			return
		}
		t1 := t.clk.Now()

		if !t.source.Running() || interrupt.Requested() {
			t.logger.Info("stop requested, clearing run flag")
			t.running.Store(false)
			t3 := t.clk.Now()
			t.logRow(t0, t1, t3, tsReal, t.classify(t3.Sub(t0)))
			return
		}

		t3 := t.clk.Now()
		t.logRow(t0, t1, t3, tsReal, t.classify(t3.Sub(t0)))
		t.timer.Wait()
	}
}
