package replication

import "context"

// Handler receives raw payloads delivered on a subscribed channel.
// Handlers run on a per-channel forwarding goroutine; they must not
// block indefinitely.
type Handler func(payload []byte)

// Status reports bus connectivity for diagnostics.
type Status struct {
	Connected bool     `json:"connected"`
	Channels  []string `json:"channels"`
}

// Bus is the cross-instance replication transport.
type Bus interface {
	// Connect establishes the transport. Implementations retry with
	// bounded backoff and return a fatal error once attempts are
	// exhausted.
	Connect(ctx context.Context) error

	// Disconnect releases both the publish and subscribe legs of the
	// transport on every exit path.
	Disconnect() error

	// Subscribe registers at most one handler per channel; subsequent
	// calls for an already-subscribed channel are no-ops.
	Subscribe(ctx context.Context, channel string, h Handler) error

	// Unsubscribe stops delivery for a channel and releases its
	// subscription. Unknown channels are a no-op.
	Unsubscribe(channel string) error

	// Publish sends a payload to a channel and returns the subscriber
	// count observed by the transport.
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)

	// Status reports connectivity and the set of subscribed channels.
	Status() Status
}

// ChannelFor returns the replication channel name for a room.
// One channel per room: "room:<roomId>:updates".
func ChannelFor(roomID string) string {
	return "room:" + roomID + ":updates"
}
