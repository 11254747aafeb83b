package replication

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/docmesh-go/internal/core/domain"
)

func TestChannelFor(t *testing.T) {
	tests := []struct {
		roomID string
		want   string
	}{
		{"alpha", "room:alpha:updates"},
		{"doc-42", "room:doc-42:updates"},
		{"", "room::updates"},
	}

	for _, tt := range tests {
		if got := ChannelFor(tt.roomID); got != tt.want {
			t.Errorf("ChannelFor(%q) = %q, want %q", tt.roomID, got, tt.want)
		}
	}
}

func TestMemoryBus_PublishDelivers(t *testing.T) {
	ctx := context.Background()
	exchange := NewMemoryExchange()
	a := exchange.Bus()
	b := exchange.Bus()

	if err := a.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := b.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	var got []byte
	err := b.Subscribe(ctx, ChannelFor("alpha"), func(payload []byte) {
		got = payload
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	n, err := a.Publish(ctx, ChannelFor("alpha"), []byte("update-1"))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Publish() subscribers = %d, want 1", n)
	}
	if string(got) != "update-1" {
		t.Errorf("delivered payload = %q, want %q", got, "update-1")
	}
}

func TestMemoryBus_PublisherReceivesOwnMessage(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryExchange().Bus()
	if err := bus.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	delivered := 0
	if err := bus.Subscribe(ctx, "ch", func([]byte) { delivered++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := bus.Publish(ctx, "ch", []byte("x")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1 (publisher is also a subscriber)", delivered)
	}
}

func TestMemoryBus_SubscribeIdempotent(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryExchange().Bus()
	if err := bus.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	first, second := 0, 0
	if err := bus.Subscribe(ctx, "ch", func([]byte) { first++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	// Second subscribe for the same channel is a no-op; the first
	// handler stays in place.
	if err := bus.Subscribe(ctx, "ch", func([]byte) { second++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := bus.Publish(ctx, "ch", []byte("x")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if first != 1 || second != 0 {
		t.Errorf("first = %d, second = %d, want 1 and 0", first, second)
	}
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryExchange().Bus()
	if err := bus.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	delivered := 0
	if err := bus.Subscribe(ctx, "ch", func([]byte) { delivered++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := bus.Unsubscribe("ch"); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	n, err := bus.Publish(ctx, "ch", []byte("x"))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if n != 0 || delivered != 0 {
		t.Errorf("subscribers = %d, delivered = %d, want 0 and 0", n, delivered)
	}

	// Unknown channel is a no-op.
	if err := bus.Unsubscribe("missing"); err != nil {
		t.Errorf("Unsubscribe(missing) error = %v", err)
	}
}

func TestMemoryBus_RequiresConnect(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryExchange().Bus()

	if err := bus.Subscribe(ctx, "ch", func([]byte) {}); !errors.Is(err, domain.ErrBusUnavailable) {
		t.Errorf("Subscribe() error = %v, want %v", err, domain.ErrBusUnavailable)
	}
	if _, err := bus.Publish(ctx, "ch", []byte("x")); !errors.Is(err, domain.ErrBusUnavailable) {
		t.Errorf("Publish() error = %v, want %v", err, domain.ErrBusUnavailable)
	}
}

func TestMemoryBus_DisconnectDropsSubscriptions(t *testing.T) {
	ctx := context.Background()
	exchange := NewMemoryExchange()
	a := exchange.Bus()
	b := exchange.Bus()
	for _, bus := range []*MemoryBus{a, b} {
		if err := bus.Connect(ctx); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}

	if err := b.Subscribe(ctx, "ch", func([]byte) {}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := b.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}

	n, err := a.Publish(ctx, "ch", []byte("x"))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if n != 0 {
		t.Errorf("subscribers = %d, want 0 after disconnect", n)
	}

	status := b.Status()
	if status.Connected {
		t.Error("Status().Connected = true after Disconnect")
	}
	if len(status.Channels) != 0 {
		t.Errorf("Channels = %v, want empty", status.Channels)
	}
}

func TestMemoryBus_Status(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryExchange().Bus()
	if err := bus.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	for _, ch := range []string{ChannelFor("zeta"), ChannelFor("alpha")} {
		if err := bus.Subscribe(ctx, ch, func([]byte) {}); err != nil {
			t.Fatalf("Subscribe(%q) error = %v", ch, err)
		}
	}

	status := bus.Status()
	if !status.Connected {
		t.Error("Status().Connected = false, want true")
	}
	want := []string{"room:alpha:updates", "room:zeta:updates"}
	if !reflect.DeepEqual(status.Channels, want) {
		t.Errorf("Channels = %v, want %v (sorted)", status.Channels, want)
	}
}
