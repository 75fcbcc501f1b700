package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

type DispatcherConfig struct {
	PoolSize        int
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.PoolSize <= 0 {
		c.PoolSize = 16
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 500 * time.Millisecond
	}
	return c
}

// Dispatcher sends mail on a bounded goroutine pool with exponential retry.
type Dispatcher struct {
	mailer Mailer
	pool   *ants.Pool
	cfg    DispatcherConfig
}

func NewDispatcher(mailer Mailer, cfg DispatcherConfig) (*Dispatcher, error) {
	cfg = cfg.withDefaults()

	pool, err := ants.NewPool(cfg.PoolSize, ants.WithNonblocking(true), ants.WithPanicHandler(func(p interface{}) {
		zap.L().Error("email task panicked", zap.Any("panic", p))
	}))
	if err != nil {
		return nil, fmt.Errorf("ants.NewPool -> %w", err)
	}

	return &Dispatcher{
		mailer: mailer,
		pool:   pool,
		cfg:    cfg,
	}, nil
}

// Dispatch queues msg and returns immediately. Delivery errors are logged.
// It fails only when the pool is saturated or closed.
func (d *Dispatcher) Dispatch(msg Message) error {
	err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
		defer cancel()

		if err := d.Send(ctx, msg); err != nil {
			zap.L().Error("email delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("d.pool.Submit -> %w", err)
	}

	return nil
}

// Send delivers msg on the caller's goroutine, retrying until ctx ends or
// the retry budget is spent.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.InitialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, d.cfg.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		return d.mailer.Send(ctx, msg)
	}, b, func(err error, wait time.Duration) {
		zap.L().Warn("email send failed, retrying",
			zap.String("to", msg.To),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

// SendOnce makes a single delivery attempt bounded by the configured
// timeout. Used where the caller reports the failure itself.
func (d *Dispatcher) SendOnce(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	return d.mailer.Send(ctx, msg)
}

// Close waits up to timeout for queued deliveries to finish.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
