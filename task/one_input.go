package task

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/loopsim/loopsim/block"
	"github.com/loopsim/loopsim/state"
)

// Selector reads one field of the signal cell. Called with the cell's
// lock held.
type Selector func(*state.Signals) float64

// Setter writes one field of the signal cell. Called with the cell's lock
// held.
type Setter func(*state.Signals, float64)

// Task runs a one-input block between two fields of the signal cell at a
// fixed rate.
type Task struct {
	*core
	blk    block.Block
	sig    *state.Signals
	input  Selector
	output Setter
}

// New starts a periodic task around a one-input block. The worker runs
// until the shared run flag clears.
func New(name string, blk block.Block, sig *state.Signals, input Selector, output Setter,
	running *atomic.Bool, freq float64, logger golog.Logger, opts Options,
) (*Task, error) {
	if blk == nil || sig == nil || input == nil || output == nil {
		return nil, errors.Errorf("task %s: block, cell and bindings are required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &Task{core: c, blk: blk, sig: sig, input: input, output: output}
	c.start(t.run)
	return t, nil
}

func (t *Task) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.shouldRun() {
			return
		}
		t1 := t.clk.Now()

		t.sig.Lock()
		u := t.input(t.sig)
		t.sig.Unlock()

		y, err := t.blk.Step(u)
		if err != nil {
			t.logger.Errorw("block step failed", "task", t.name, "error", err)
		} else {
			t.sig.Lock()
			t.output(t.sig, y)
			t.sig.Unlock()
		}

		t3 := t.clk.Now()
		t.logRow(t0, t1, t3, tsReal, t.classify(t3.Sub(t0)))
		t.timer.Wait()
	}
}

// TwoInputTask runs a two-input block (the summing junction) reading both
// inputs under a single lock acquisition.
type TwoInputTask struct {
	*core
	blk    block.TwoInputBlock
	sig    *state.Signals
	input1 Selector
	input2 Selector
	output Setter
}

// NewTwoInput starts a periodic task around a two-input block.
func NewTwoInput(name string, blk block.TwoInputBlock, sig *state.Signals,
	input1, input2 Selector, output Setter,
	running *atomic.Bool, freq float64, logger golog.Logger, opts Options,
) (*TwoInputTask, error) {
	if blk == nil || sig == nil || input1 == nil || input2 == nil || output == nil {
		return nil, errors.Errorf("task %s: block, cell and bindings are required", name)
	}
	c, err := newCore(name, freq, running, logger, opts)
	if err != nil {
		return nil, err
	}
	t := &TwoInputTask{core: c, blk: blk, sig: sig, input1: input1, input2: input2, output: output}
	c.start(t.run)
	return t, nil
}

func (t *TwoInputTask) run() {
	for {
		t0, tsReal := t.beginCycle()
		if !t.shouldRun() {
			return
		}
		t1 := t.clk.Now()

		t.sig.Lock()
		u1 := t.input1(t.sig)
		u2 := t.input2(t.sig)
		t.sig.Unlock()

		y, err := t.blk.Step2(u1, u2)
		if err != nil {
			t.logger.Errorw("block step failed", "task", t.name, "error", err)
		} else {
			t.sig.Lock()
			t.output(t.sig, y)
			t.sig.Unlock()
		}

		t3 := t.clk.Now()
		t.logRow(t0, t1, t3, tsReal, t.classify(t3.Sub(t0)))
		t.timer.Wait()
	}
}
