// Package task wraps blocks, generators and IPC endpoints into periodic
// executors. Each task owns a worker goroutine started at construction, a
// drift-free absolute timer, and a runtime performance log; it observes
// the shared run flag and the process interrupt flag once per period and
// joins cleanly on shutdown.
package task

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	goutils "go.viam.com/utils"

	"github.com/loopsim/loopsim/config"
	"github.com/loopsim/loopsim/interrupt"
	"github.com/loopsim/loopsim/runtimelog"
	"github.com/loopsim/loopsim/timing"
)

// Status classifies one cycle of a task for the timing log.
type Status string

// Cycle statuses. A cycle is OK below 90% of the period, WARNING up to the
// period, CRITICAL beyond it; ERROR_MUTEX marks a bounded-lock timeout and
// ERROR_QUEUE a full telemetry queue.
const (
	StatusOK       Status = "OK"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
	StatusErrMutex Status = "ERROR_MUTEX"
	StatusErrQueue Status = "ERROR_QUEUE"
)

// Options carries the runtime tunables every task needs.
type Options struct {
	Clock             clock.Clock
	LogDir            string
	LoggerCapacity    int
	LoggerFlush       int
	WarningThreshold  float64
	CriticalThreshold float64
	TimedLockFraction float64
}

// OptionsFromConfig derives task options from the central configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Clock:             clock.New(),
		LogDir:            cfg.LogDir,
		LoggerCapacity:    cfg.LoggerCapacity,
		LoggerFlush:       cfg.LoggerFlushInterval,
		WarningThreshold:  cfg.WarningThreshold,
		CriticalThreshold: cfg.CriticalThreshold,
		TimedLockFraction: cfg.TimedLockFraction,
	}
}

func (o *Options) fillDefaults() {
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.LogDir == "" {
		o.LogDir = config.DefaultLogDir
	}
	if o.LoggerCapacity == 0 {
		o.LoggerCapacity = config.DefaultLoggerCapacity
	}
	if o.LoggerFlush == 0 {
		o.LoggerFlush = config.DefaultLoggerFlushInterval
	}
	if o.WarningThreshold == 0 {
		o.WarningThreshold = config.DefaultWarningThreshold
	}
	if o.CriticalThreshold == 0 {
		o.CriticalThreshold = config.DefaultCriticalThreshold
	}
	if o.TimedLockFraction == 0 {
		o.TimedLockFraction = config.DefaultTimedLockFraction
	}
}

// core holds the machinery shared by every task variant.
type core struct {
	name     string
	freq     float64
	clk      clock.Clock
	rlog     *runtimelog.Logger
	logger   golog.Logger
	running  *atomic.Bool
	warnFrac float64
	critFrac float64
	timeout  time.Duration

	timer  *timing.Timer
	period time.Duration

	wg   sync.WaitGroup
	iter atomic.Int64
	prev time.Time
}

func newCore(name string, freq float64, running *atomic.Bool, logger golog.Logger, opts Options) (*core, error) {
	if freq <= 0 {
		return nil, errors.Errorf("task %s: frequency must be > 0, got %f", name, freq)
	}
	if running == nil {
		return nil, errors.Errorf("task %s: run flag is required", name)
	}
	opts.fillDefaults()
	timer, err := timing.New(freq, opts.Clock)
	if err != nil {
		return nil, errors.Wrapf(err, "task %s", name)
	}
	rlog := runtimelog.New(name, opts.LoggerCapacity, opts.LogDir)
	rlog.SetFlushInterval(opts.LoggerFlush)
	rlog.InitializeTaskLog(name, freq)
	return &core{
		name:     name,
		freq:     freq,
		clk:      opts.Clock,
		rlog:     rlog,
		logger:   logger,
		running:  running,
		warnFrac: opts.WarningThreshold,
		critFrac: opts.CriticalThreshold,
		timeout:  time.Duration(opts.TimedLockFraction * float64(time.Second) / freq),
		timer:    timer,
		period:   timer.Period(),
	}, nil
}

// start spawns the worker goroutine. The constructor returns once the
// goroutine is scheduled, not when it exits.
func (c *core) start(run func()) {
	c.wg.Add(1)
	goutils.ManagedGo(run, c.wg.Done)
}

// Join blocks until the worker exits, then finalises the timing log.
func (c *core) Join() {
	c.wg.Wait()
	c.rlog.Close()
}

// Name returns the task name.
func (c *core) Name() string { return c.name }

// LogPath returns the path of the task's timing log file.
func (c *core) LogPath() string { return c.rlog.Path() }

// Iterations returns the number of cycles run so far.
func (c *core) Iterations() int { return int(c.iter.Load()) }

// LogLines returns the buffered timing rows, oldest first.
func (c *core) LogLines() []string { return c.rlog.Lines() }

// shouldRun reports whether the loop may run another cycle.
func (c *core) shouldRun() bool {
	return c.running.Load() && !interrupt.Requested()
}

// beginCycle stamps the cycle start and measures the real inter-cycle
// period.
func (c *core) beginCycle() (t0 time.Time, tsReal time.Duration) {
	c.iter.Inc()
	t0 = c.clk.Now()
	if c.prev.IsZero() {
		tsReal = c.period
	} else {
		tsReal = t0.Sub(c.prev)
	}
	c.prev = t0
	return t0, tsReal
}

// classify maps a cycle's total time onto the status ladder.
func (c *core) classify(tTotal time.Duration) Status {
	total := float64(tTotal)
	period := float64(c.period)
	switch {
	case total > c.critFrac*period:
		return StatusCritical
	case total > c.warnFrac*period:
		return StatusWarning
	default:
		return StatusOK
	}
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// logRow writes one timing row. Error statuses are flushed immediately.
func (c *core) logRow(t0, t1, t3 time.Time, tsReal time.Duration, status Status) {
	force := status == StatusErrMutex || status == StatusErrQueue
	c.rlog.WriteTimingRow(int(c.iter.Load()),
		micros(t1.Sub(t0)), micros(t3.Sub(t1)), micros(t3.Sub(t0)),
		micros(c.period), micros(tsReal), string(status), force)
}
