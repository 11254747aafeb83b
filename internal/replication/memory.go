package replication

import (
	"context"
	"sort"
	"sync"

	"github.com/yndnr/docmesh-go/internal/core/domain"
)

// MemoryExchange is an in-process publish/subscribe transport. Buses
// attached to the same exchange see each other's publishes, including
// their own (mirroring Redis, which also delivers a publisher its own
// message when it is subscribed). It backs single-instance
// deployments that run without Redis, and tests.
type MemoryExchange struct {
	mu    sync.RWMutex
	buses []*MemoryBus
}

// NewMemoryExchange creates an empty exchange.
func NewMemoryExchange() *MemoryExchange {
	return &MemoryExchange{}
}

// Bus attaches a new bus to the exchange.
func (e *MemoryExchange) Bus() *MemoryBus {
	b := &MemoryBus{
		exchange: e,
		handlers: make(map[string]Handler),
	}
	e.mu.Lock()
	e.buses = append(e.buses, b)
	e.mu.Unlock()
	return b
}

// deliver fans a payload out to every attached bus subscribed to the
// channel, returning the subscriber count.
func (e *MemoryExchange) deliver(channel string, payload []byte) int64 {
	e.mu.RLock()
	buses := make([]*MemoryBus, len(e.buses))
	copy(buses, e.buses)
	e.mu.RUnlock()

	var count int64
	for _, b := range buses {
		b.mu.Lock()
		h, ok := b.handlers[channel]
		connected := b.connected
		b.mu.Unlock()
		if ok && connected {
			count++
			h(payload)
		}
	}
	return count
}

// MemoryBus implements Bus on a MemoryExchange.
type MemoryBus struct {
	exchange *MemoryExchange

	mu        sync.Mutex
	connected bool
	handlers  map[string]Handler
}

// Connect marks the bus connected. It never fails.
func (b *MemoryBus) Connect(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = true
	return nil
}

// Disconnect drops all subscriptions.
func (b *MemoryBus) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	b.handlers = make(map[string]Handler)
	return nil
}

// Subscribe registers the handler for a channel; already-subscribed
// channels are a no-op.
func (b *MemoryBus) Subscribe(_ context.Context, channel string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return domain.ErrBusUnavailable
	}
	if _, ok := b.handlers[channel]; ok {
		return nil
	}
	b.handlers[channel] = h
	return nil
}

// Unsubscribe removes a channel's handler. Unknown channels are a no-op.
func (b *MemoryBus) Unsubscribe(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, channel)
	return nil
}

// Publish delivers the payload synchronously to every subscribed bus
// on the exchange.
func (b *MemoryBus) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	b.mu.Lock()
	connected := b.connected
	b.mu.Unlock()

	if !connected {
		return 0, domain.ErrBusUnavailable
	}
	return b.exchange.deliver(channel, payload), nil
}

// Status reports connectivity and the sorted set of subscribed channels.
func (b *MemoryBus) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	channels := make([]string, 0, len(b.handlers))
	for channel := range b.handlers {
		channels = append(channels, channel)
	}
	sort.Strings(channels)

	return Status{
		Connected: b.connected,
		Channels:  channels,
	}
}

// compile-time interface checks
var (
	_ Bus = (*RedisBus)(nil)
	_ Bus = (*MemoryBus)(nil)
)
