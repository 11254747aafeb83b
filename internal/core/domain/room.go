package domain

import "time"

// Client is one connected participant of a room.
// Client records are owned exclusively by the room registry; a client
// belongs to at most one room at a time.
type Client struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	InstanceID string    `json:"instanceId"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// Room is a snapshot of one collaboration session's bookkeeping.
// A room exists if and only if its paired document exists; it is
// destroyed synchronously when its last member leaves.
type Room struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	ClientCount  int       `json:"clientCount"`
	UpdatesCount int64     `json:"updatesCount"`
	LastUpdateAt time.Time `json:"lastUpdateAt,omitzero"`
}
