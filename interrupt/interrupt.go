// Package interrupt isolates the process-global stop flag flipped by
// SIGINT/SIGTERM. Install is called once from main, before any task
// starts; every task loop observes Requested once per period.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/atomic"
)

var (
	installOnce sync.Once
	requested   atomic.Bool
)

// Install registers the interrupt and terminate handlers. Safe to call
// more than once; only the first call installs.
func Install() {
	installOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-ch
			requested.Store(true)
		}()
	})
}

// Requested reports whether a stop signal has been received.
func Requested() bool {
	return requested.Load()
}

// Clear resets the flag. Intended for tests.
func Clear() {
	requested.Store(false)
}
