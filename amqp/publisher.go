package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/velmie/mutationq"
)

const (
	defaultExchange       = "mutationq.topic"
	defaultRoutingPrefix  = "mutationq"
	defaultConfirmTimeout = 10 * time.Second
	contentTypeJSON       = "application/json"
)

var (
	// ErrBrokerUnavailable is returned when the connection or channel has closed.
	ErrBrokerUnavailable = errors.New("mutationq amqp: broker connection is closed")
	// ErrNacked is returned when the broker refuses a message.
	ErrNacked = errors.New("mutationq amqp: message not acknowledged by broker")
	// ErrConfirmTimeout is returned when no publisher confirm arrives in time.
	ErrConfirmTimeout = errors.New("mutationq amqp: publisher confirm timeout")
)

type confirmation interface {
	Done() <-chan struct{}
	Acked() bool
}

type publishFunc func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error)

// Config defines publisher behavior.
type Config struct {
	Exchange       string
	RoutingPrefix  string
	ConfirmTimeout time.Duration
	// RedialMin and RedialMax bound the Reconnector backoff between failed dials.
	RedialMin time.Duration
	RedialMax time.Duration
	Logger    mutationq.Logger
}

func (c Config) withDefaults() Config {
	if c.Exchange == "" {
		c.Exchange = defaultExchange
	}
	if c.RoutingPrefix == "" {
		c.RoutingPrefix = defaultRoutingPrefix
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = defaultConfirmTimeout
	}
	if c.RedialMin <= 0 {
		c.RedialMin = defaultRedialMin
	}
	if c.RedialMax <= 0 {
		c.RedialMax = defaultRedialMax
	}
	if c.Logger == nil {
		c.Logger = mutationq.NopLogger{}
	}

	return c
}

// Option configures the Publisher.
type Option func(*Config)

// WithExchange sets the topic exchange entries are published to.
func WithExchange(name string) Option {
	return func(c *Config) {
		c.Exchange = name
	}
}

// WithRoutingPrefix sets the first routing key segment.
func WithRoutingPrefix(prefix string) Option {
	return func(c *Config) {
		c.RoutingPrefix = prefix
	}
}

// WithConfirmTimeout bounds the wait for a publisher confirm.
func WithConfirmTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ConfirmTimeout = timeout
	}
}

// WithRedialBackoff bounds the delay between failed dials of a Reconnector.
func WithRedialBackoff(minDelay, maxDelay time.Duration) Option {
	return func(c *Config) {
		c.RedialMin = minDelay
		c.RedialMax = maxDelay
	}
}

// WithLogger sets the publisher logger.
func WithLogger(logger mutationq.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Publisher publishes entries with publisher confirms enabled.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	publish publishFunc
	cfg     Config

	healthy   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

var _ mutationq.Processor = (*Publisher)(nil)

// Dial connects to url, declares the topic exchange and enables publisher confirms.
func Dial(url string, opts ...Option) (*Publisher, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mutationq amqp: connect failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("mutationq amqp: open channel failed: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("mutationq amqp: declare exchange failed: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("mutationq amqp: enable confirms failed: %w", err)
	}

	p := newPublisher(cfg, func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error) {
		confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, msg)
		if err != nil {
			return nil, err
		}

		return confirm, nil
	})
	p.conn = conn
	p.channel = ch
	p.watch(conn.NotifyClose(make(chan *amqp.Error, 1)), ch.NotifyClose(make(chan *amqp.Error, 1)))

	cfg.Logger.Info("mutationq amqp publisher connected", "exchange", cfg.Exchange)

	return p, nil
}

func newPublisher(cfg Config, publish publishFunc) *Publisher {
	p := &Publisher{
		publish: publish,
		cfg:     cfg,
		done:    make(chan struct{}),
	}
	p.healthy.Store(true)

	return p
}

func (p *Publisher) watch(connClosed, chanClosed <-chan *amqp.Error) {
	go func() {
		select {
		case err := <-connClosed:
			p.healthy.Store(false)
			p.cfg.Logger.Warn("mutationq amqp connection closed", "err", err)
		case err := <-chanClosed:
			p.healthy.Store(false)
			p.cfg.Logger.Warn("mutationq amqp channel closed", "err", err)
		case <-p.done:
		}
	}()
}

// Process publishes the encoded entry and waits for the broker to confirm it.
func (p *Publisher) Process(ctx context.Context, entry mutationq.Entry) error {
	if !p.Healthy() {
		return ErrBrokerUnavailable
	}

	body, err := mutationq.EncodeEntry(entry)
	if err != nil {
		return err
	}

	routingKey := RoutingKey(p.cfg.RoutingPrefix, entry)
	confirm, err := p.publish(ctx, p.cfg.Exchange, routingKey, amqp.Publishing{
		Headers: amqp.Table{
			"kind": entry.Kind().String(),
			"seq":  int64(entry.Seq),
		},
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.ID,
		Timestamp:    entry.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("mutationq amqp: publish failed: %w", err)
	}

	timer := time.NewTimer(p.cfg.ConfirmTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-confirm.Done():
		if !confirm.Acked() {
			return ErrNacked
		}
		p.cfg.Logger.Debug("mutationq amqp entry published", "id", entry.ID, "routing_key", routingKey)

		return nil
	case <-timer.C:
		return ErrConfirmTimeout
	}
}

// Healthy reports whether the connection and channel are still open.
func (p *Publisher) Healthy() bool {
	return p.healthy.Load()
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		p.healthy.Store(false)
		if p.channel != nil {
			err = errors.Join(err, p.channel.Close())
		}
		if p.conn != nil {
			err = errors.Join(err, p.conn.Close())
		}
	})

	return err
}

// RoutingKey builds the topic routing key for an entry.
func RoutingKey(prefix string, entry mutationq.Entry) string {
	parts := []string{prefix, entry.Kind().String()}

	var target string
	switch op := entry.Op.(type) {
	case mutationq.Insert:
		target = op.Table
	case mutationq.Update:
		target = op.Table
	case mutationq.Delete:
		target = op.Table
	case mutationq.RPC:
		target = op.Procedure
	case mutationq.FunctionCall:
		target = op.Function
	case mutationq.Upload:
		target = op.Bucket
	}
	if target != "" {
		parts = append(parts, sanitizeSegment(target))
	}

	return strings.Join(parts, ".")
}

// sanitizeSegment keeps topic wildcards and the segment separator out of a routing key segment.
func sanitizeSegment(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", "#", "_", " ", "_").Replace(s)
}
