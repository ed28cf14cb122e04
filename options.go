package mutationq

import (
	"context"
	"time"
)

const defaultLockName = "mutationq:drain"

// FailureHandler is called when a replay fails and halts a drain.
type FailureHandler func(ctx context.Context, entry Entry, err error)

// Config defines how a Queue captures and replays entries.
type Config struct {
	Clock            Clock
	Generator        IDGenerator
	Logger           Logger
	Metrics          Metrics
	ErrorHandler     FailureHandler
	ProcessorTimeout time.Duration
	LockName         string
	ValidateJSON     bool
	validateJSONSet  bool
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Generator == nil {
		c.Generator = NewUUIDv7Generator()
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.LockName == "" {
		c.LockName = defaultLockName
	}
	if !c.validateJSONSet {
		c.ValidateJSON = true
	}

	return c
}

// Option configures Queue behavior.
type Option func(*Config)

// WithClock sets the time source used to stamp entries.
func WithClock(clock Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithGenerator sets the entry id generator.
func WithGenerator(gen IDGenerator) Option {
	return func(c *Config) {
		c.Generator = gen
	}
}

// WithLogger sets the queue logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the queue metrics recorder.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithErrorHandler registers a callback for the replay failure that halts a drain.
func WithErrorHandler(handler FailureHandler) Option {
	return func(c *Config) {
		c.ErrorHandler = handler
	}
}

// WithProcessorTimeout bounds each processor call. A timeout counts as a replay failure.
func WithProcessorTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ProcessorTimeout = timeout
	}
}

// WithLockName sets the name used with a store Locker.
func WithLockName(name string) Option {
	return func(c *Config) {
		c.LockName = name
	}
}

// WithValidateJSON enables or disables JSON validation of opaque operation fields.
func WithValidateJSON(enabled bool) Option {
	return func(c *Config) {
		c.ValidateJSON = enabled
		c.validateJSONSet = true
	}
}
