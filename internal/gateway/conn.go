package gateway

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is one bidirectional client connection. The gateway holds only
// this narrow view of the transport so that tests can substitute an
// in-memory implementation.
type Conn interface {
	// Send writes one outbound frame. A send on a closed or broken
	// connection returns an error and is skipped by broadcasts.
	Send(data []byte) error

	// Close tears the connection down.
	Close() error
}

// wsConn adapts a gorilla WebSocket connection to Conn. WebSocket
// connections support one concurrent writer, so sends are serialized
// with a mutex.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
