package registry

import (
	"sync"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/docstore"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// room is the registry's mutable record for one collaboration session.
type room struct {
	id           string
	createdAt    time.Time
	updatesCount int64
	lastUpdateAt time.Time
	members      map[string]*domain.Client
}

// snapshot returns an immutable view of the room.
func (r *room) snapshot() domain.Room {
	return domain.Room{
		ID:           r.id,
		CreatedAt:    r.createdAt,
		ClientCount:  len(r.members),
		UpdatesCount: r.updatesCount,
		LastUpdateAt: r.lastUpdateAt,
	}
}

// Stats summarizes registry population for diagnostics.
type Stats struct {
	Rooms   int `json:"rooms"`
	Clients int `json:"clients"`
}

// Registry tracks rooms and their member clients. Deleting a room is
// synchronous with its last member's removal; there is no grace
// period, and a rejoin of the same id starts from a fresh document.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*room
	clients map[string]*domain.Client
	docs    *docstore.Store
	log     logger.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New creates a registry backed by the given document store. The
// store is consulted to create a room's document on first access and
// to delete it when the room dies.
func New(docs *docstore.Store, opts ...Option) *Registry {
	r := &Registry{
		rooms:   make(map[string]*room),
		clients: make(map[string]*domain.Client),
		docs:    docs,
		log:     logger.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// GetOrCreateRoom returns the room's snapshot, creating the room and
// its empty document if absent. Idempotent.
func (r *Registry) GetOrCreateRoom(id string) domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(id).snapshot()
}

func (r *Registry) getOrCreateLocked(id string) *room {
	if rm, ok := r.rooms[id]; ok {
		return rm
	}

	rm := &room{
		id:        id,
		createdAt: time.Now(),
		members:   make(map[string]*domain.Client),
	}
	r.rooms[id] = rm
	r.docs.GetOrCreate(id)
	r.log.Info("room created", "room", id)
	return rm
}

// AddClient registers a client in a room, creating the room if
// absent. A client belongs to at most one room; joining a new room
// removes any previous membership first.
func (r *Registry) AddClient(clientID, roomID, instanceID string) domain.Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.clients[clientID]; ok && prev.RoomID != roomID {
		r.removeClientLocked(clientID)
	}

	rm := r.getOrCreateLocked(roomID)
	client := &domain.Client{
		ID:         clientID,
		RoomID:     roomID,
		InstanceID: instanceID,
		JoinedAt:   time.Now(),
	}
	rm.members[clientID] = client
	r.clients[clientID] = client

	r.log.Debug("client joined", "client", clientID, "room", roomID)
	return *client
}

// RemoveClient removes a client's membership. It is a no-op for
// unknown clients. When the last member leaves, the room and its
// document are deleted synchronously. It returns the room the client
// left and whether that room was destroyed.
func (r *Registry) RemoveClient(clientID string) (roomID string, destroyed bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeClientLocked(clientID)
}

func (r *Registry) removeClientLocked(clientID string) (string, bool, bool) {
	client, ok := r.clients[clientID]
	if !ok {
		return "", false, false
	}
	delete(r.clients, clientID)

	rm, ok := r.rooms[client.RoomID]
	if !ok {
		return client.RoomID, false, true
	}
	delete(rm.members, clientID)
	r.log.Debug("client left", "client", clientID, "room", rm.id)

	if len(rm.members) == 0 {
		delete(r.rooms, rm.id)
		r.docs.Delete(rm.id)
		r.log.Info("room destroyed", "room", rm.id, "updates", rm.updatesCount)
		return rm.id, true, true
	}
	return rm.id, false, true
}

// ClientsOf returns a snapshot of the room's current members.
func (r *Registry) ClientsOf(roomID string) []domain.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	members := make([]domain.Client, 0, len(rm.members))
	for _, c := range rm.members {
		members = append(members, *c)
	}
	return members
}

// Lookup returns the membership record for a client, if any.
func (r *Registry) Lookup(clientID string) (domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[clientID]
	if !ok {
		return domain.Client{}, false
	}
	return *client, true
}

// RecordUpdate increments the room's update counter and stamps the
// update time. It is a no-op if the room vanished concurrently.
func (r *Registry) RecordUpdate(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return
	}
	rm.updatesCount++
	rm.lastUpdateAt = time.Now()
}

// Room returns a snapshot of one room.
func (r *Registry) Room(roomID string) (domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.Room{}, false
	}
	return rm.snapshot(), true
}

// Rooms returns snapshots of all live rooms.
func (r *Registry) Rooms() []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm.snapshot())
	}
	return out
}

// Stats returns room and client counts for diagnostics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Rooms:   len(r.rooms),
		Clients: len(r.clients),
	}
}
