// Package connection provides connection management for docmesh-cli.
package connection

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/docmesh-go/internal/core/domain"
)

// WSClient is one WebSocket connection to a DocMesh server.
type WSClient struct {
	conn *websocket.Conn
}

// DialWS opens a WebSocket connection to a server's /ws endpoint.
// The server address may be given bare (host:port) or as an http/ws URL.
func DialWS(ctx context.Context, server string) (*WSClient, error) {
	url := server
	switch {
	case strings.HasPrefix(url, "ws://"), strings.HasPrefix(url, "wss://"):
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	default:
		url = "ws://" + url
	}
	if !strings.HasSuffix(url, "/ws") {
		url = strings.TrimSuffix(url, "/") + "/ws"
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return &WSClient{conn: conn}, nil
}

// Join sends a join-room message.
func (c *WSClient) Join(roomID string) error {
	return c.sendMessage(&domain.Message{
		Type:   domain.KindJoinRoom,
		RoomID: roomID,
	})
}

// Leave sends a leave-room message.
func (c *WSClient) Leave(roomID string) error {
	return c.sendMessage(&domain.Message{
		Type:   domain.KindLeaveRoom,
		RoomID: roomID,
	})
}

// SendUpdate sends a document update with raw update bytes. The bytes
// are base64-encoded into the JSON envelope.
func (c *WSClient) SendUpdate(roomID string, update []byte) error {
	msg := domain.NewDocumentUpdate(roomID, "", base64.StdEncoding.EncodeToString(update), time.Now().UnixMilli())
	return c.sendMessage(msg)
}

// SendBinary writes a raw binary frame.
func (c *WSClient) SendBinary(frame []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Read blocks for the next server message.
func (c *WSClient) Read() (*domain.Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return domain.DecodeMessage(data)
}

// Close tears the connection down.
func (c *WSClient) Close() error {
	return c.conn.Close()
}

func (c *WSClient) sendMessage(msg *domain.Message) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
