// Package config centralizes the runtime constants of the simulator.
// Defaults live in code; a loopsim.toml file or LOOPSIM_* environment
// variables may override them.
package config

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Default rates and tuning constants. Every sampling period in the
// pipeline derives from these.
const (
	DefaultControllerFreq = 100.0  // Hz, PID / sum / reference tasks
	DefaultComponentFreq  = 1000.0 // Hz, D/A, plant and A/D tasks
	DefaultCommFreq       = 10.0   // Hz, IPC transmitter/receiver/monitor

	DefaultLoggerCapacity      = 1000
	DefaultLoggerFlushInterval = 100
	DefaultLogDir              = "logs"

	DefaultSampleBufferSize = 100

	DefaultTimedLockFraction = 0.2
	DefaultWarningThreshold  = 0.9
	DefaultCriticalThreshold = 1.0
)

// Config holds every tunable of the simulator process.
type Config struct {
	ControllerFreq float64 `mapstructure:"controller_freq"`
	ComponentFreq  float64 `mapstructure:"component_freq"`
	CommFreq       float64 `mapstructure:"comm_freq"`

	LoggerCapacity      int    `mapstructure:"logger_capacity"`
	LoggerFlushInterval int    `mapstructure:"logger_flush_interval"`
	LogDir              string `mapstructure:"log_dir"`

	SampleBufferSize int `mapstructure:"sample_buffer_size"`

	TimedLockFraction float64 `mapstructure:"timed_lock_fraction"`
	WarningThreshold  float64 `mapstructure:"warning_threshold"`
	CriticalThreshold float64 `mapstructure:"critical_threshold"`

	// DebugTelemetry switches the transmitter to the 6-value payload.
	DebugTelemetry bool `mapstructure:"debug_telemetry"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		ControllerFreq:      DefaultControllerFreq,
		ComponentFreq:       DefaultComponentFreq,
		CommFreq:            DefaultCommFreq,
		LoggerCapacity:      DefaultLoggerCapacity,
		LoggerFlushInterval: DefaultLoggerFlushInterval,
		LogDir:              DefaultLogDir,
		SampleBufferSize:    DefaultSampleBufferSize,
		TimedLockFraction:   DefaultTimedLockFraction,
		WarningThreshold:    DefaultWarningThreshold,
		CriticalThreshold:   DefaultCriticalThreshold,
	}
}

// ControllerPeriod returns 1/ControllerFreq in seconds.
func (c *Config) ControllerPeriod() float64 { return 1.0 / c.ControllerFreq }

// ComponentPeriod returns 1/ComponentFreq in seconds.
func (c *Config) ComponentPeriod() float64 { return 1.0 / c.ComponentFreq }

// Load reads loopsim.toml from /etc/loopsim or the working directory and
// applies it over the defaults. A missing file is not an error.
func Load(logger golog.Logger) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("loopsim")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc/loopsim")
	v.AddConfigPath(".")
	v.SetEnvPrefix("loopsim")
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows of, so bind each one to its
	// LOOPSIM_* variable for overrides without a config file.
	for _, key := range []string{
		"controller_freq", "component_freq", "comm_freq",
		"logger_capacity", "logger_flush_interval", "log_dir",
		"sample_buffer_size", "timed_lock_fraction",
		"warning_threshold", "critical_threshold", "debug_telemetry",
	} {
		if err := v.BindEnv(key); err != nil {
			return cfg, errors.Wrap(err, "cannot bind environment override")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, errors.Wrap(err, "cannot read loopsim.toml")
		}
		logger.Debug("no loopsim.toml found, using built-in defaults")
	} else {
		logger.Infof("configuration loaded from %s", v.ConfigFileUsed())
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "cannot parse loopsim.toml")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the runtime cannot honor.
func (c *Config) Validate() error {
	if c.ControllerFreq <= 0 || c.ComponentFreq <= 0 || c.CommFreq <= 0 {
		return errors.New("config: frequencies must be > 0")
	}
	if c.LoggerCapacity <= 0 {
		return errors.New("config: logger_capacity must be > 0")
	}
	if c.TimedLockFraction <= 0 || c.TimedLockFraction >= 1 {
		return errors.Errorf("config: timed_lock_fraction %f outside (0, 1)", c.TimedLockFraction)
	}
	if c.WarningThreshold <= 0 || c.CriticalThreshold < c.WarningThreshold {
		return errors.New("config: thresholds must satisfy 0 < warning <= critical")
	}
	return nil
}
