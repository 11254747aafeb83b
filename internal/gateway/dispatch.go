package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/replication"
)

// handleFrame decodes one inbound frame and dispatches it. A frame is
// first attempted as a JSON envelope when it looks like `{`-prefixed
// text; otherwise as a binary frame. When both decodes fail the
// sender gets an error reply and the connection stays open.
func (g *Gateway) handleFrame(sess *session, data []byte) {
	if !sess.limiter.Allow() {
		g.log.Warn("message rate exceeded, dropping", "client", sess.clientID)
		g.metrics.ConnectionErrors.Inc()
		return
	}

	msg, err := g.decode(data)
	if err != nil {
		// A well-formed envelope with an unrecognized kind is dropped
		// without a reply; only undecodable frames earn an error.
		if errors.Is(err, domain.ErrUnknownKind) {
			g.log.Debug("unknown message kind, ignoring", "client", sess.clientID, "error", err)
			return
		}
		g.log.Warn("undecodable frame", "client", sess.clientID, "error", err)
		g.metrics.ConnectionErrors.Inc()
		g.send(sess.conn, domain.NewError("", "Invalid message format"))
		return
	}

	g.metrics.MessagesProcessed.WithLabelValues(string(msg.Type)).Inc()
	g.dispatch(sess, msg)
}

// decode tries the JSON envelope first, then the binary frame.
func (g *Gateway) decode(data []byte) (*domain.Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		msg, err := domain.DecodeMessage(trimmed)
		if err == nil {
			return msg, nil
		}
		// An envelope that parsed but carries an unknown kind is not a
		// binary frame; surface it so dispatch can ignore it.
		if errors.Is(err, domain.ErrUnknownKind) {
			return nil, err
		}
		// A `{`-prefixed frame that fails JSON decode may still be a
		// binary frame whose first byte happens to collide; fall through.
	}
	if msg, err := DecodeFrame(data); err == nil {
		return msg, nil
	}
	return nil, domain.ErrInvalidMessage
}

// dispatch routes a decoded message by kind.
func (g *Gateway) dispatch(sess *session, msg *domain.Message) {
	switch msg.Type {
	case domain.KindJoinRoom:
		g.handleJoin(sess, msg)
	case domain.KindLeaveRoom:
		g.handleLeave(sess)
	case domain.KindDocumentUpdate:
		g.handleUpdate(sess, msg)
	default:
		// sync-update only arrives via the replication bus; everything
		// else has no meaning inbound. Logged, ignored, connection
		// unaffected.
		g.log.Debug("ignoring inbound message", "client", sess.clientID, "kind", msg.Type)
	}
}

// handleJoin registers the client in a room, sends it the full
// document state plus a join ack, notifies the other local members,
// and ensures the instance is subscribed to the room's replication
// channel.
func (g *Gateway) handleJoin(sess *session, msg *domain.Message) {
	if msg.RoomID == "" {
		g.send(sess.conn, domain.NewError("", "Room ID is required"))
		return
	}
	roomID := msg.RoomID

	// A join while already in another room is a room switch: run the
	// full leave path first so the old room's members are notified and
	// its channel subscription is released if the room dies.
	if sess.joined && sess.roomID != roomID {
		g.leaveRoom(sess)
	}

	g.reg.AddClient(sess.clientID, roomID, g.cfg.InstanceID)
	sess.joined = true
	sess.roomID = roomID
	g.syncGauges()

	state, err := g.docs.EncodeFull(roomID)
	if err != nil {
		g.log.Error("encode document state", "room", roomID, "error", err)
	} else {
		stateB64 := base64.StdEncoding.EncodeToString(state)
		g.send(sess.conn, domain.NewDocumentState(roomID, stateB64))
	}

	g.send(sess.conn, domain.NewAck(roomID, domain.AckPayload{
		Message:      "joined room " + roomID,
		ClientJoined: sess.clientID,
	}))

	g.broadcast(roomID, domain.NewAck(roomID, domain.AckPayload{
		Message:      "client " + sess.clientID + " joined",
		ClientJoined: sess.clientID,
	}), sess.clientID)

	// Idempotent: the bus never double-subscribes a channel.
	channel := replication.ChannelFor(roomID)
	err = g.bus.Subscribe(context.Background(), channel, func(payload []byte) {
		g.onBusDelivery(roomID, payload)
	})
	if err != nil {
		g.log.Error("subscribe room channel", "room", roomID, "error", err)
		g.send(sess.conn, domain.NewError(roomID, "Failed to subscribe to room updates"))
	}

	g.log.Info("client joined room", "client", sess.clientID, "room", roomID)
}

// handleLeave removes the client's membership and notifies the
// remaining local members.
func (g *Gateway) handleLeave(sess *session) {
	if !sess.joined {
		g.log.Debug("leave without membership", "client", sess.clientID)
		return
	}
	g.leaveRoom(sess)
}

// leaveRoom performs the shared leave path, also used for the
// implicit leave on connection close.
func (g *Gateway) leaveRoom(sess *session) {
	roomID, destroyed, ok := g.reg.RemoveClient(sess.clientID)
	sess.joined = false
	sess.roomID = ""
	if !ok {
		return
	}
	g.syncGauges()

	if destroyed {
		// The room died with its last local member; release the
		// replication channel with it.
		if err := g.bus.Unsubscribe(replication.ChannelFor(roomID)); err != nil {
			g.log.Warn("unsubscribe room channel", "room", roomID, "error", err)
		}
	} else {
		g.broadcast(roomID, domain.NewAck(roomID, domain.AckPayload{
			Message:    "client " + sess.clientID + " left",
			ClientLeft: sess.clientID,
		}), sess.clientID)
	}

	g.log.Info("client left room", "client", sess.clientID, "room", roomID)
}

// handleUpdate applies a client's document update locally, republishes
// it on the room's replication channel, and broadcasts it to the other
// local members.
func (g *Gateway) handleUpdate(sess *session, msg *domain.Message) {
	if !sess.joined {
		g.log.Debug("update before join, dropping", "client", sess.clientID)
		return
	}
	if msg.RoomID == "" {
		g.log.Warn("update without room id, dropping", "client", sess.clientID)
		return
	}
	// Updates are bound to the session's joined room. An update naming
	// any other room would create a document the registry has no room
	// for, so it is dropped.
	if msg.RoomID != sess.roomID {
		g.log.Warn("update for unjoined room, dropping",
			"client", sess.clientID, "joined", sess.roomID, "room", msg.RoomID)
		return
	}
	roomID := sess.roomID

	payload, err := msg.UpdatePayload()
	if err != nil {
		g.log.Warn("malformed update payload, dropping",
			"client", sess.clientID, "room", roomID, "error", err)
		return
	}

	update, err := base64.StdEncoding.DecodeString(payload.Update)
	if err != nil {
		g.log.Warn("update is not valid base64, dropping",
			"client", sess.clientID, "room", roomID, "error", err)
		return
	}

	if !g.applyUpdate(roomID, update) {
		return
	}

	ts := payload.Timestamp
	if ts == 0 {
		ts = msg.Timestamp
	}
	g.publishUpdate(roomID, sess.clientID, payload.Update, ts)
	g.broadcast(roomID, domain.NewDocumentUpdate(roomID, sess.clientID, payload.Update, ts), sess.clientID)
}

// applyUpdate routes raw update bytes to the merge or patch path and
// records room statistics. Decoded bytes that begin with `{` are a
// field patch; anything else is an opaque merge delta. Empty updates
// and application failures are logged and dropped; they never affect
// the connection or other rooms.
func (g *Gateway) applyUpdate(roomID string, update []byte) bool {
	trimmed := bytes.TrimSpace(update)
	if len(trimmed) == 0 {
		g.log.Warn("empty update, dropping", "room", roomID)
		return false
	}

	start := time.Now()
	mode := "merge"
	var err error
	if trimmed[0] == '{' {
		mode = "patch"
		var fields map[string]any
		if err = json.Unmarshal(trimmed, &fields); err == nil {
			err = g.docs.ApplyPatch(roomID, fields)
		}
	} else {
		err = g.docs.ApplyMerge(roomID, update)
	}

	if err != nil {
		g.log.Warn("update application failed, dropping",
			"room", roomID, "mode", mode, "error", err)
		return false
	}

	g.reg.RecordUpdate(roomID)
	g.metrics.UpdatesApplied.WithLabelValues(mode).Inc()
	g.metrics.UpdateDuration.Observe(time.Since(start).Seconds())
	return true
}

// publishUpdate republishes a locally-applied update on the room's
// replication channel, tagged with this instance's id. Publish
// failures are logged only; local delivery has already happened and
// must not be blocked.
func (g *Gateway) publishUpdate(roomID, clientID, updateB64 string, ts int64) {
	envelope, err := domain.EncodeSyncEnvelope(clientID, updateB64, g.cfg.InstanceID, ts)
	if err != nil {
		g.log.Error("encode sync envelope", "room", roomID, "error", err)
		return
	}

	subscribers, err := g.bus.Publish(context.Background(), replication.ChannelFor(roomID), envelope)
	if err != nil {
		g.log.Warn("publish update failed", "room", roomID, "error", err)
		return
	}
	g.metrics.BusPublishes.Inc()
	g.log.Debug("update published", "room", roomID, "subscribers", subscribers)
}

// onBusDelivery handles a sync-update delivered on a room's
// replication channel: apply, then broadcast to all local members.
// Deliveries tagged with this instance's id are its own echoes and are
// skipped entirely.
func (g *Gateway) onBusDelivery(roomID string, payload []byte) {
	env, err := domain.DecodeSyncEnvelope(payload)
	if err != nil {
		g.log.Warn("malformed bus delivery, dropping", "room", roomID, "error", err)
		return
	}
	if env.InstanceID == g.cfg.InstanceID {
		return
	}
	// The room may have died between the delivery being published and
	// it arriving here. Applying anyway would resurrect a document with
	// no owning room, so deliveries for memberless rooms are dropped.
	if _, ok := g.reg.Room(roomID); !ok {
		g.log.Debug("bus delivery for dead room, dropping", "room", roomID)
		return
	}
	g.metrics.BusDeliveries.Inc()

	update, err := base64.StdEncoding.DecodeString(env.Update)
	if err != nil {
		g.log.Warn("bus delivery is not valid base64, dropping", "room", roomID, "error", err)
		return
	}

	if !g.applyUpdate(roomID, update) {
		return
	}

	g.broadcast(roomID, domain.NewDocumentUpdate(roomID, env.ClientID, env.Update, env.Timestamp), "")
}
