package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/velmie/mutationq"
)

const (
	defaultRedialMin = time.Second
	defaultRedialMax = time.Minute
)

// session is one live broker connection. *Publisher is the production implementation.
type session interface {
	mutationq.Processor
	Healthy() bool
	Close() error
}

type dialFunc func() (session, error)

// Reconnector is a Processor that keeps a Publisher connected.
//
// It dials lazily on the first Process call and again whenever the connection or channel has
// closed, so a relay can start while the broker is down and survives broker restarts. Failed
// dials are spaced by a jittered exponential backoff; until the next dial is due, Process fails
// fast with ErrBrokerUnavailable, which halts the drain and leaves entries queued.
type Reconnector struct {
	dial    dialFunc
	logger  mutationq.Logger
	now     func() time.Time
	backoff *backoff

	mu      sync.Mutex
	current session
	retryAt time.Time
	closed  bool
}

var _ mutationq.Processor = (*Reconnector)(nil)

// NewReconnector returns a Reconnector that dials url with opts. It does not connect until used.
func NewReconnector(url string, opts ...Option) *Reconnector {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return newReconnector(cfg, func() (session, error) {
		p, err := Dial(url, opts...)
		if err != nil {
			return nil, err
		}

		return p, nil
	})
}

func newReconnector(cfg Config, dial dialFunc) *Reconnector {
	return &Reconnector{
		dial:    dial,
		logger:  cfg.Logger,
		now:     time.Now,
		backoff: newBackoff(cfg.RedialMin, cfg.RedialMax),
	}
}

// Process publishes entry on the current connection, redialing first when it is gone.
func (r *Reconnector) Process(ctx context.Context, entry mutationq.Entry) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	return s.Process(ctx, entry)
}

// Healthy reports whether a live connection is currently held.
func (r *Reconnector) Healthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current != nil && r.current.Healthy()
}

// Close closes the current connection. Later Process calls fail with ErrBrokerUnavailable.
func (r *Reconnector) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.current == nil {
		return nil
	}
	err := r.current.Close()
	r.current = nil

	return err
}

func (r *Reconnector) session() (session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrBrokerUnavailable
	}
	if r.current != nil {
		if r.current.Healthy() {
			return r.current, nil
		}
		r.logger.Warn("mutationq amqp connection lost, redialing")
		if err := r.current.Close(); err != nil && !errors.Is(err, ErrBrokerUnavailable) {
			r.logger.Debug("mutationq amqp close of dead connection failed", "err", err)
		}
		r.current = nil
	}

	now := r.now()
	if now.Before(r.retryAt) {
		return nil, fmt.Errorf("%w: next dial in %s", ErrBrokerUnavailable, r.retryAt.Sub(now).Round(time.Millisecond))
	}

	s, err := r.dial()
	if err != nil {
		wait := r.backoff.Next()
		r.retryAt = now.Add(wait)
		r.logger.Error("mutationq amqp dial failed, retrying", "wait", wait, "attempt", r.backoff.attempts, "err", err)

		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	if r.backoff.attempts > 0 {
		r.logger.Info("mutationq amqp connection restored", "attempts", r.backoff.attempts)
	}
	r.backoff.Reset()
	r.retryAt = time.Time{}
	r.current = s

	return s, nil
}
