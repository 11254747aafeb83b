package domain

import (
	"encoding/json"
	"time"
)

// Kind identifies a wire message type.
type Kind string

// Wire message kinds.
const (
	KindJoinRoom       Kind = "join-room"
	KindLeaveRoom      Kind = "leave-room"
	KindDocumentUpdate Kind = "document-update"
	KindDocumentState  Kind = "document-state"
	KindSyncUpdate     Kind = "sync-update"
	KindError          Kind = "error"
	KindAck            Kind = "ack"
)

// Valid reports whether k is one of the known message kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindJoinRoom, KindLeaveRoom, KindDocumentUpdate,
		KindDocumentState, KindSyncUpdate, KindError, KindAck:
		return true
	}
	return false
}

// Message is the wire-level envelope exchanged with clients.
// A Message is immutable once constructed; it is never mutated after send.
type Message struct {
	Type      Kind            `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// DocumentStatePayload carries the full encoded document for a new joiner.
type DocumentStatePayload struct {
	State     string `json:"state"` // base64 full-state encoding
	Timestamp int64  `json:"timestamp"`
}

// DocumentUpdatePayload carries one document update.
type DocumentUpdatePayload struct {
	Update    string `json:"update"` // base64 update bytes
	ClientID  string `json:"clientId"`
	Timestamp int64  `json:"timestamp"`
}

// AckPayload acknowledges a room operation.
type AckPayload struct {
	Message      string `json:"message"`
	ClientJoined string `json:"clientJoined,omitempty"`
	ClientLeft   string `json:"clientLeft,omitempty"`
}

// ErrorPayload carries a client-visible error description.
type ErrorPayload struct {
	Error string `json:"error"`
}

// SyncEnvelope is the instance-to-instance payload published on a
// room's replication channel. InstanceID tags the originating instance
// so that subscribers can drop their own echoes.
type SyncEnvelope struct {
	Type       Kind   `json:"type"` // always KindSyncUpdate
	ClientID   string `json:"clientId"`
	Update     string `json:"update"` // base64 update bytes
	Timestamp  int64  `json:"timestamp"`
	InstanceID string `json:"instanceId"`
}

// DecodeMessage parses a JSON envelope and validates its kind.
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, ErrInvalidMessage.Wrap(err)
	}
	if !msg.Type.Valid() {
		return nil, ErrUnknownKind.WithDetails(string(msg.Type))
	}
	return &msg, nil
}

// UpdatePayload decodes the payload of a document-update or
// sync-update message, rejecting payloads that do not match the shape.
func (m *Message) UpdatePayload() (*DocumentUpdatePayload, error) {
	if m.Type != KindDocumentUpdate && m.Type != KindSyncUpdate {
		return nil, ErrPayloadShape.WithDetails(string(m.Type))
	}
	if len(m.Payload) == 0 {
		return nil, ErrEmptyUpdate
	}
	var p DocumentUpdatePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, ErrPayloadShape.Wrap(err)
	}
	return &p, nil
}

// Encode serializes the message for the wire.
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, ErrInvalidMessage.Wrap(err)
	}
	return data, nil
}

// nowMillis returns the current time in milliseconds since epoch,
// the timestamp unit used on the wire.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewDocumentState builds a document-state message for a room.
func NewDocumentState(roomID, stateB64 string) *Message {
	ts := nowMillis()
	payload, _ := json.Marshal(DocumentStatePayload{State: stateB64, Timestamp: ts})
	return &Message{Type: KindDocumentState, RoomID: roomID, Payload: payload, Timestamp: ts}
}

// NewDocumentUpdate builds a document-update message carrying base64 bytes.
func NewDocumentUpdate(roomID, clientID, updateB64 string, ts int64) *Message {
	if ts == 0 {
		ts = nowMillis()
	}
	payload, _ := json.Marshal(DocumentUpdatePayload{Update: updateB64, ClientID: clientID, Timestamp: ts})
	return &Message{Type: KindDocumentUpdate, RoomID: roomID, ClientID: clientID, Payload: payload, Timestamp: ts}
}

// NewAck builds an ack message.
func NewAck(roomID string, payload AckPayload) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: KindAck, RoomID: roomID, Payload: data, Timestamp: nowMillis()}
}

// NewError builds an error message.
func NewError(roomID, text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Error: text})
	return &Message{Type: KindError, RoomID: roomID, Payload: payload, Timestamp: nowMillis()}
}

// EncodeSyncEnvelope serializes the replication payload for a local update.
func EncodeSyncEnvelope(clientID, updateB64, instanceID string, ts int64) ([]byte, error) {
	if ts == 0 {
		ts = nowMillis()
	}
	data, err := json.Marshal(SyncEnvelope{
		Type:       KindSyncUpdate,
		ClientID:   clientID,
		Update:     updateB64,
		Timestamp:  ts,
		InstanceID: instanceID,
	})
	if err != nil {
		return nil, ErrInvalidMessage.Wrap(err)
	}
	return data, nil
}

// DecodeSyncEnvelope parses a replication payload delivered by the bus.
func DecodeSyncEnvelope(data []byte) (*SyncEnvelope, error) {
	var env SyncEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrInvalidMessage.Wrap(err)
	}
	if env.Type != KindSyncUpdate {
		return nil, ErrPayloadShape.WithDetails(string(env.Type))
	}
	return &env, nil
}
