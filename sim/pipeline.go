// Package sim assembles the closed-loop pipeline: it owns the shared
// cells, builds every block and generator with matched sampling periods,
// starts the periodic tasks in pipeline order and joins them in reverse
// on shutdown.
package sim

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/loopsim/loopsim/block"
	"github.com/loopsim/loopsim/config"
	"github.com/loopsim/loopsim/interrupt"
	"github.com/loopsim/loopsim/ipc"
	"github.com/loopsim/loopsim/signal"
	"github.com/loopsim/loopsim/state"
	"github.com/loopsim/loopsim/task"
)

// Default generator and controller parameters applied until the GUI
// retunes them.
const (
	defaultKp       = 1.0
	defaultKi       = 0.0
	defaultKd       = 0.0
	defaultSetpoint = 0.0

	defaultStepAmplitude = 1.0
	defaultStepTime      = 0.05
	defaultPWMDuty       = 0.5
	defaultPWMPeriod     = 1.0
	defaultSineFreq      = 1.0
)

type joinable interface {
	Join()
	Name() string
	LogPath() string
}

// Options tunes pipeline assembly beyond the central configuration.
type Options struct {
	// Clock defaults to the wall clock; tests may inject one.
	Clock clock.Clock
	// RunSource defaults to "always running" so only signals stop the
	// process.
	RunSource task.RunSource
}

// Pipeline is the assembled simulator: two shared cells, six periodic
// tasks around the loop blocks, the IPC pair and the run/stop monitor.
type Pipeline struct {
	cfg       config.Config
	logger    golog.Logger
	transport ipc.Transport
	running   *atomic.Bool
	clk       clock.Clock

	signals *state.Signals
	params  *state.Params

	tasks []joinable
}

// New builds every block with its task-matched sampling period, wires the
// cells and starts all tasks. Construction failure leaves nothing
// running.
func New(cfg config.Config, transport ipc.Transport, logger golog.Logger, opts Options) (*Pipeline, error) {
	if transport == nil {
		return nil, errors.New("pipeline needs a transport")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	source := opts.RunSource
	if source == nil {
		source = task.RunSourceFunc(func() bool { return true })
	}

	p := &Pipeline{
		cfg:       cfg,
		logger:    logger,
		transport: transport,
		running:   atomic.NewBool(true),
		clk:       clk,
		signals:   state.NewSignals(clk),
		params:    state.NewParams(clk, defaultKp, defaultKi, defaultKd, defaultSetpoint, ipc.SignalStep),
	}

	tsCtrl := cfg.ControllerPeriod()
	tsComp := cfg.ComponentPeriod()
	bufSize := cfg.SampleBufferSize

	sw, err := p.buildSwitch(tsCtrl)
	if err != nil {
		return nil, p.abort(err)
	}
	sum, err := block.NewSubtract(tsCtrl, bufSize)
	if err != nil {
		return nil, p.abort(err)
	}
	pid, err := block.NewPID(defaultKp, defaultKi, defaultKd, tsCtrl, bufSize)
	if err != nil {
		return nil, p.abort(err)
	}
	da, err := block.NewHold(tsComp, bufSize)
	if err != nil {
		return nil, p.abort(err)
	}
	plant, err := p.buildPlant(tsComp, bufSize)
	if err != nil {
		return nil, p.abort(err)
	}
	ad, err := block.NewDelay(tsComp, bufSize)
	if err != nil {
		return nil, p.abort(err)
	}

	taskOpts := task.OptionsFromConfig(cfg)
	taskOpts.Clock = clk

	type taskBuild struct {
		name  string
		build func() (joinable, error)
	}
	builds := []taskBuild{
		{"signal", func() (joinable, error) {
			return task.NewSignal("signal", sw, p.signals, p.params, p.running, cfg.ControllerFreq, logger, taskOpts)
		}},
		{"sum", func() (joinable, error) {
			return task.NewTwoInput("sum", sum, p.signals,
				func(s *state.Signals) float64 { return s.Ref },
				func(s *state.Signals) float64 { return s.Ykd },
				func(s *state.Signals, v float64) { s.E = v },
				p.running, cfg.ControllerFreq, logger, taskOpts)
		}},
		{"pid", func() (joinable, error) {
			return task.NewPID("pid", pid, p.signals, p.params, p.running, cfg.ControllerFreq, logger, taskOpts)
		}},
		{"da", func() (joinable, error) {
			return task.New("da", da, p.signals,
				func(s *state.Signals) float64 { return s.U },
				func(s *state.Signals, v float64) { s.Ua = v },
				p.running, cfg.ComponentFreq, logger, taskOpts)
		}},
		{"plant", func() (joinable, error) {
			return task.New("plant", plant, p.signals,
				func(s *state.Signals) float64 { return s.Ua },
				func(s *state.Signals, v float64) { s.Yk = v },
				p.running, cfg.ComponentFreq, logger, taskOpts)
		}},
		{"ad", func() (joinable, error) {
			return task.New("ad", ad, p.signals,
				func(s *state.Signals) float64 { return s.Yk },
				func(s *state.Signals, v float64) { s.Ykd = v },
				p.running, cfg.ComponentFreq, logger, taskOpts)
		}},
		{"transmitter", func() (joinable, error) {
			return task.NewTransmitter("transmitter", transport, p.signals,
				p.running, cfg.CommFreq, cfg.DebugTelemetry, logger, taskOpts)
		}},
		{"receiver", func() (joinable, error) {
			return task.NewReceiver("receiver", transport, p.params,
				p.running, cfg.CommFreq, logger, taskOpts)
		}},
		{"monitor", func() (joinable, error) {
			return task.NewMonitor("monitor", source, p.running, cfg.CommFreq, logger, taskOpts)
		}},
	}
	for _, b := range builds {
		t, err := b.build()
		if err != nil {
			return nil, p.abort(errors.Wrapf(err, "building task %s", b.name))
		}
		p.tasks = append(p.tasks, t)
	}

	logger.Infow("pipeline running",
		"controller_hz", cfg.ControllerFreq,
		"component_hz", cfg.ComponentFreq,
		"comm_hz", cfg.CommFreq)
	return p, nil
}

// abort tears down any task already started after a construction failure.
func (p *Pipeline) abort(err error) error {
	p.running.Store(false)
	for i := len(p.tasks) - 1; i >= 0; i-- {
		p.tasks[i].Join()
	}
	p.tasks = nil
	return err
}

func (p *Pipeline) buildSwitch(ts float64) (*signal.Switch, error) {
	step, err := signal.NewStep(ts, defaultStepAmplitude, defaultStepTime, 0)
	if err != nil {
		return nil, err
	}
	pwm, err := signal.NewPWM(ts, defaultStepAmplitude, defaultPWMDuty, defaultPWMPeriod, 0)
	if err != nil {
		return nil, err
	}
	sine, err := signal.NewSine(ts, defaultStepAmplitude, defaultSineFreq, 0, 0)
	if err != nil {
		return nil, err
	}
	return signal.NewSwitch(step, pwm, sine, signal.SelectStep)
}

// buildPlant discretises the first-order plant 1/(s+1) with Tustin at the
// component period.
func (p *Pipeline) buildPlant(ts float64, bufSize int) (*block.TransferFunction, error) {
	tf, err := block.Discretize([]float64{1}, []float64{1, 1}, ts, block.Tustin)
	if err != nil {
		return nil, err
	}
	return block.NewTransferFunction(tf.B, tf.A, ts, bufSize)
}

// Signals returns the pipeline signal cell.
func (p *Pipeline) Signals() *state.Signals { return p.signals }

// Params returns the tunable parameter cell.
func (p *Pipeline) Params() *state.Params { return p.params }

// Running reports whether the pipeline is still running.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Wait blocks until the run flag clears, polling at the communication
// rate.
func (p *Pipeline) Wait() {
	poll := time.Duration(float64(time.Second) / p.cfg.CommFreq)
	for p.running.Load() && !interrupt.Requested() {
		p.clk.Sleep(poll)
	}
}

// Stop clears the run flag, joins every task in reverse construction
// order and closes the transport last.
func (p *Pipeline) Stop() error {
	p.running.Store(false)
	for i := len(p.tasks) - 1; i >= 0; i-- {
		t := p.tasks[i]
		t.Join()
		p.logger.Debugw("task joined", "task", t.Name(), "log", t.LogPath())
	}
	p.tasks = nil
	var err error
	if closeErr := p.transport.Close(); closeErr != nil {
		err = multierr.Append(err, errors.Wrap(closeErr, "closing transport"))
	}
	p.logger.Info("pipeline stopped")
	return err
}
