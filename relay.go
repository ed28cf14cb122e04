package mutationq

import (
	"context"
	"errors"
	"time"
)

const defaultPollInterval = 30 * time.Second

// RelayConfig defines when the Relay drains the queue.
type RelayConfig struct {
	// PollInterval is the delay between scheduled drains. Zero or negative disables polling.
	PollInterval time.Duration
	// DrainOnStart drains once before waiting for the first tick or trigger.
	DrainOnStart bool
	pollSet      bool
}

func (c RelayConfig) withDefaults() RelayConfig {
	if !c.pollSet {
		c.PollInterval = defaultPollInterval
	}

	return c
}

// RelayOption configures Relay behavior.
type RelayOption func(*RelayConfig)

// WithPollInterval sets the delay between scheduled drains.
func WithPollInterval(interval time.Duration) RelayOption {
	return func(c *RelayConfig) {
		c.PollInterval = interval
		c.pollSet = true
	}
}

// WithDrainOnStart enables a drain as soon as Run starts.
func WithDrainOnStart(enabled bool) RelayOption {
	return func(c *RelayConfig) {
		c.DrainOnStart = enabled
	}
}

// Relay drains a Queue on a schedule and on demand, for example when connectivity returns.
type Relay struct {
	queue     *Queue
	processor Processor
	cfg       RelayConfig
	trigger   chan struct{}
}

// NewRelay constructs a Relay with defaults and optional settings.
func NewRelay(queue *Queue, processor Processor, opts ...RelayOption) *Relay {
	if queue == nil {
		panic("mutationq: nil Queue")
	}
	if processor == nil {
		panic("mutationq: nil Processor")
	}

	cfg := RelayConfig{DrainOnStart: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Relay{
		queue:     queue,
		processor: processor,
		cfg:       cfg.withDefaults(),
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger requests a drain without blocking. Triggers issued while one is pending coalesce.
func (r *Relay) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run drains until ctx is canceled. Drain errors are logged and the loop keeps going.
func (r *Relay) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.cfg.PollInterval > 0 {
		ticker := time.NewTicker(r.cfg.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	if r.cfg.DrainOnStart {
		r.drain(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}

			return ctx.Err()
		case <-tick:
			r.drain(ctx)
		case <-r.trigger:
			r.drain(ctx)
		}
	}
}

// DrainOnce runs a single drain and refreshes the pending gauge.
// A drain already running elsewhere is not an error.
func (r *Relay) DrainOnce(ctx context.Context) error {
	err := r.queue.Drain(ctx, r.processor)
	if errors.Is(err, ErrDrainInProgress) {
		err = nil
	}
	if err != nil {
		return err
	}

	r.recordPending(ctx)

	return nil
}

func (r *Relay) drain(ctx context.Context) {
	if err := r.DrainOnce(ctx); err != nil && ctx.Err() == nil {
		r.queue.cfg.Logger.Error("mutationq relay drain failed", "err", err)
	}
}

func (r *Relay) recordPending(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	count, err := r.queue.Count(ctx)
	if err != nil {
		r.queue.cfg.Logger.Warn("mutationq pending count failed", "err", err)

		return
	}

	r.queue.cfg.Metrics.SetPending(count)
}
