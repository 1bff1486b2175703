package config

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.ControllerFreq, test.ShouldEqual, 100.0)
	test.That(t, cfg.ComponentFreq, test.ShouldEqual, 1000.0)
	test.That(t, cfg.CommFreq, test.ShouldEqual, 10.0)
	test.That(t, cfg.ControllerPeriod(), test.ShouldAlmostEqual, 0.01)
	test.That(t, cfg.ComponentPeriod(), test.ShouldAlmostEqual, 0.001)
	test.That(t, cfg.LoggerCapacity, test.ShouldEqual, 1000)
	test.That(t, cfg.LoggerFlushInterval, test.ShouldEqual, 100)
	test.That(t, cfg.TimedLockFraction, test.ShouldEqual, 0.2)
}

func TestValidate(t *testing.T) {
	for _, c := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero controller freq", func(c *Config) { c.ControllerFreq = 0 }},
		{"negative component freq", func(c *Config) { c.ComponentFreq = -1 }},
		{"zero logger capacity", func(c *Config) { c.LoggerCapacity = 0 }},
		{"lock fraction too large", func(c *Config) { c.TimedLockFraction = 1.5 }},
		{"critical below warning", func(c *Config) { c.CriticalThreshold = 0.5 }},
	} {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			test.That(t, cfg.Validate(), test.ShouldNotBeNil)
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	// no loopsim.toml in the test working directory: defaults apply
	logger := golog.NewTestLogger(t)
	cfg, err := Load(logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, DefaultConfig())
}
