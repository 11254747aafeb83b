package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/docstore"
	"github.com/yndnr/docmesh-go/internal/registry"
	"github.com/yndnr/docmesh-go/internal/replication"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

// Rate limiting defaults for inbound messages per connection.
const (
	DefaultMessageRate  = 200 // messages per second
	DefaultMessageBurst = 400
)

// Config configures the Gateway.
type Config struct {
	// InstanceID identifies this server instance; it tags published
	// updates for self-echo suppression.
	InstanceID string

	// MessageRate is the sustained inbound message rate allowed per
	// connection (messages/second).
	MessageRate float64

	// MessageBurst is the burst size allowed per connection.
	MessageBurst int

	// Logger for gateway events.
	Logger logger.Logger

	// Metrics receives gateway counters and gauges.
	Metrics *metric.Registry
}

// session is the gateway's per-connection state. Its fields are only
// mutated from the connection's read loop; the state machine is
// open -> joined -> closed.
type session struct {
	clientID string
	conn     Conn
	limiter  *rate.Limiter
	joined   bool
	roomID   string
}

// Gateway terminates client connections and routes their messages.
type Gateway struct {
	cfg     Config
	reg     *registry.Registry
	docs    *docstore.Store
	bus     replication.Bus
	log     logger.Logger
	metrics *metric.Registry

	upgrader websocket.Upgrader

	mu        sync.Mutex
	accepting bool
	sessions  map[string]*session // clientID -> session
}

// New creates a gateway.
func New(cfg Config, reg *registry.Registry, docs *docstore.Store, bus replication.Bus) *Gateway {
	if cfg.MessageRate <= 0 {
		cfg.MessageRate = DefaultMessageRate
	}
	if cfg.MessageBurst <= 0 {
		cfg.MessageBurst = DefaultMessageBurst
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.NewRegistry()
	}

	return &Gateway{
		cfg:     cfg,
		reg:     reg,
		docs:    docs,
		bus:     bus,
		log:     log.With("component", "gateway"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		accepting: true,
		sessions:  make(map[string]*session),
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and
// serves it until it closes.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	accepting := g.accepting
	g.mu.Unlock()
	if !accepting {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		g.metrics.ConnectionErrors.Inc()
		return
	}

	sess := g.attach(newWSConn(ws))
	defer g.detach(sess)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			g.log.Debug("connection closed", "client", sess.clientID, "error", err)
			return
		}
		g.handleFrame(sess, data)
	}
}

// attach registers a new connection and returns its session. The
// session starts in the open state; only a join-room message gives it
// room context.
func (g *Gateway) attach(conn Conn) *session {
	sess := &session{
		clientID: uuid.NewString(),
		conn:     conn,
		limiter:  rate.NewLimiter(rate.Limit(g.cfg.MessageRate), g.cfg.MessageBurst),
	}

	g.mu.Lock()
	g.sessions[sess.clientID] = sess
	g.mu.Unlock()

	g.metrics.ClientsConnected.Inc()
	g.log.Debug("connection attached", "client", sess.clientID)
	return sess
}

// detach tears a session down: an implicit leave-room for joined
// sessions, then removal of the connection mapping.
func (g *Gateway) detach(sess *session) {
	if sess.joined {
		g.leaveRoom(sess)
	}

	g.mu.Lock()
	delete(g.sessions, sess.clientID)
	g.mu.Unlock()

	_ = sess.conn.Close()
	g.metrics.ClientsConnected.Dec()
	g.log.Debug("connection detached", "client", sess.clientID)
}

// connOf returns the live connection for a client id, if any.
func (g *Gateway) connOf(clientID string) (Conn, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[clientID]
	if !ok {
		return nil, false
	}
	return sess.conn, true
}

// send encodes and writes one message to a connection. Send failures
// are logged and counted, never propagated; a broken connection is
// cleaned up by its own read loop.
func (g *Gateway) send(conn Conn, msg *domain.Message) {
	data, err := msg.Encode()
	if err != nil {
		g.log.Error("encode outbound message", "kind", msg.Type, "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		g.metrics.ConnectionErrors.Inc()
		g.log.Debug("send failed", "kind", msg.Type, "error", err)
	}
}

// broadcast sends a message to every local member of a room, skipping
// the excluded client id. Closed or broken connections are silently
// skipped and never retried.
func (g *Gateway) broadcast(roomID string, msg *domain.Message, excludeClientID string) {
	for _, client := range g.reg.ClientsOf(roomID) {
		if client.ID == excludeClientID {
			continue
		}
		conn, ok := g.connOf(client.ID)
		if !ok {
			continue
		}
		g.send(conn, msg)
	}
}

// syncGauges refreshes the room/client population gauges.
func (g *Gateway) syncGauges() {
	stats := g.reg.Stats()
	g.metrics.RoomsActive.Set(float64(stats.Rooms))
}

// Shutdown stops accepting new connections and closes the remaining
// ones, waiting for their read loops to drain until ctx expires. The
// bus is left untouched; it is closed last by the caller.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.accepting = false
	conns := make([]Conn, 0, len(g.sessions))
	for _, sess := range g.sessions {
		conns = append(conns, sess.conn)
	}
	g.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		g.mu.Lock()
		remaining := len(g.sessions)
		g.mu.Unlock()
		if remaining == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			g.log.Warn("shutdown with sessions remaining", "sessions", remaining)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
