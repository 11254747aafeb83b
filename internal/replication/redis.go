package replication

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// Reconnect policy defaults.
const (
	// DefaultConnectAttempts is the reconnect attempt ceiling before
	// surfacing a fatal connect error.
	DefaultConnectAttempts = 5

	// DefaultBackoffBase is multiplied by the attempt number to pace
	// reconnect attempts: base, 2*base, 3*base, ...
	DefaultBackoffBase = 500 * time.Millisecond
)

// RedisConfig configures the Redis-backed bus.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates against Redis when set.
	Password string

	// ConnectAttempts is the reconnect attempt ceiling (default 5).
	ConnectAttempts int

	// BackoffBase paces reconnect attempts (default 500ms).
	BackoffBase time.Duration

	// Logger for bus events.
	Logger logger.Logger
}

// subscription is one live per-channel subscription with its
// forwarding goroutine.
type subscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
}

// RedisBus implements Bus over Redis publish/subscribe
// (github.com/redis/go-redis/v9). Each subscribed channel gets a
// dedicated *redis.PubSub plus one goroutine forwarding deliveries
// into the registered handler.
type RedisBus struct {
	cfg    RedisConfig
	log    logger.Logger
	client *redis.Client

	mu        sync.Mutex
	connected bool
	subs      map[string]*subscription
}

// NewRedisBus creates a Redis bus. Connect must be called before use.
func NewRedisBus(cfg RedisConfig) *RedisBus {
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = DefaultConnectAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	return &RedisBus{
		cfg:  cfg,
		log:  log.With("component", "replication"),
		subs: make(map[string]*subscription),
	}
}

// Connect dials Redis with bounded backoff. After the attempt ceiling
// is exhausted the error is fatal to the caller.
func (b *RedisBus) Connect(ctx context.Context) error {
	b.mu.Lock()
	if b.connected {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	client := redis.NewClient(&redis.Options{
		Addr:     b.cfg.Addr,
		Password: b.cfg.Password,
	})

	var lastErr error
	for attempt := 1; attempt <= b.cfg.ConnectAttempts; attempt++ {
		if err := client.Ping(ctx).Err(); err == nil {
			b.mu.Lock()
			b.client = client
			b.connected = true
			b.mu.Unlock()
			b.log.Info("replication bus connected", "addr", b.cfg.Addr, "attempt", attempt)
			return nil
		} else {
			lastErr = err
			b.log.Warn("replication bus connect failed",
				"addr", b.cfg.Addr,
				"attempt", attempt,
				"max_attempts", b.cfg.ConnectAttempts,
				"error", err)
		}

		if attempt == b.cfg.ConnectAttempts {
			break
		}

		select {
		case <-time.After(b.cfg.BackoffBase * time.Duration(attempt)):
		case <-ctx.Done():
			_ = client.Close()
			return domain.ErrBusUnavailable.Wrap(ctx.Err())
		}
	}

	_ = client.Close()
	return domain.ErrBusConnectExhausted.Wrap(
		fmt.Errorf("%d attempts to %s: %w", b.cfg.ConnectAttempts, b.cfg.Addr, lastErr))
}

// Disconnect releases every subscription and then the client itself.
// Both transport legs are released on every exit path.
func (b *RedisBus) Disconnect() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[string]*subscription)
	client := b.client
	b.client = nil
	b.connected = false
	b.mu.Unlock()

	var firstErr error
	for channel, sub := range subs {
		if err := sub.pubsub.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close subscription %s: %w", channel, err)
		}
		<-sub.done
	}

	if client != nil {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close client: %w", err)
		}
	}

	b.log.Info("replication bus disconnected")
	return firstErr
}

// Subscribe registers the handler for a channel. A channel already
// subscribed by this instance is a no-op; the bus never
// double-subscribes.
func (b *RedisBus) Subscribe(ctx context.Context, channel string, h Handler) error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return domain.ErrBusUnavailable
	}
	if _, ok := b.subs[channel]; ok {
		b.mu.Unlock()
		return nil
	}

	pubsub := b.client.Subscribe(ctx, channel)
	sub := &subscription{pubsub: pubsub, done: make(chan struct{})}
	b.subs[channel] = sub
	b.mu.Unlock()

	// Wait for the subscription to be confirmed so that a publish
	// racing this call is not lost by the transport.
	if _, err := pubsub.Receive(ctx); err != nil {
		b.mu.Lock()
		delete(b.subs, channel)
		b.mu.Unlock()
		_ = pubsub.Close()
		close(sub.done)
		return domain.ErrSubscribeFailed.Wrap(fmt.Errorf("channel %s: %w", channel, err))
	}

	go b.forward(channel, sub, h)

	b.log.Info("subscribed to channel", "channel", channel)
	return nil
}

// forward drains one subscription into its handler until the
// subscription closes.
func (b *RedisBus) forward(channel string, sub *subscription, h Handler) {
	defer close(sub.done)

	for msg := range sub.pubsub.Channel() {
		h([]byte(msg.Payload))
	}

	b.log.Debug("channel forwarder stopped", "channel", channel)
}

// Unsubscribe closes a channel's subscription. Unknown channels are a
// no-op.
func (b *RedisBus) Unsubscribe(channel string) error {
	b.mu.Lock()
	sub, ok := b.subs[channel]
	if ok {
		delete(b.subs, channel)
	}
	b.mu.Unlock()

	if !ok {
		return nil
	}

	if err := sub.pubsub.Close(); err != nil {
		return fmt.Errorf("close subscription %s: %w", channel, err)
	}
	<-sub.done
	b.log.Info("unsubscribed from channel", "channel", channel)
	return nil
}

// Publish sends a payload and returns the subscriber count observed
// by Redis.
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	b.mu.Lock()
	client := b.client
	connected := b.connected
	b.mu.Unlock()

	if !connected || client == nil {
		return 0, domain.ErrBusUnavailable
	}

	count, err := client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, domain.ErrBusUnavailable.Wrap(fmt.Errorf("publish %s: %w", channel, err))
	}
	return count, nil
}

// Status reports connectivity and the sorted set of subscribed channels.
func (b *RedisBus) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	channels := make([]string, 0, len(b.subs))
	for channel := range b.subs {
		channels = append(channels, channel)
	}
	sort.Strings(channels)

	return Status{
		Connected: b.connected,
		Channels:  channels,
	}
}
