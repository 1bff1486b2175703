// Package main launches the discrete control simulator. The process runs
// until it receives an interrupt or terminate signal, or until the
// run/stop source commands stop; only initialisation failures exit
// non-zero.
package main

import (
	"fmt"
	"os"

	"github.com/edaniels/golog"

	"github.com/loopsim/loopsim/config"
	"github.com/loopsim/loopsim/interrupt"
	"github.com/loopsim/loopsim/ipc"
	"github.com/loopsim/loopsim/sim"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	logger := golog.NewDevelopmentLogger("loopsim")
	interrupt.Install()

	cfg, err := config.Load(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "loopsim: invalid configuration:", err)
		return 1
	}

	transport, err := ipc.NewMQTransport()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loopsim: cannot open message queues:", err)
		return 1
	}

	pipeline, err := sim.New(cfg, transport, logger, sim.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "loopsim: cannot assemble pipeline:", err)
		if closeErr := transport.Close(); closeErr != nil {
			logger.Errorw("closing transport", "error", closeErr)
		}
		return 1
	}

	pipeline.Wait()
	if err := pipeline.Stop(); err != nil {
		logger.Errorw("shutdown finished with errors", "error", err)
	}
	return 0
}
