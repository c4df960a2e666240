/*
Package chat contains the core logic for handling real-time chat rooms, user
connections, and message broadcasting.

This file defines the Client struct, representing one active WebSocket
connection. It manages the connection's lifecycle, the message communication
loops (ReadPump and WritePump), and dispatch of inbound events to the
Coordinator.
*/
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"studychat/internal/app/user"
	"studychat/internal/pkg/errs"
	"studychat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// Client represents one active connection and its per-connection session
// state: the identity resolved once at connect time, an optional room hint
// from the handshake, and the transport-level joined-room set. The joined set
// is owned by the Coordinator and mutated only under its lock.
type Client struct {
	coordinator *Coordinator

	// underlying WebSocket connection; nil in tests that drive the
	// coordinator directly.
	conn *websocket.Conn

	// user is the resolved identity, nil for unauthenticated connections.
	// Unauthenticated connections stay open but fail protected actions.
	user *user.User

	// roomHint is the optional room id carried on the handshake, used as the
	// join-room fallback before the default room.
	roomHint string

	// send is the buffered outbound queue drained by WritePump.
	send chan []byte

	// joined is the set of room ids this connection is subscribed to at the
	// transport layer. Guarded by the Coordinator's mutex.
	joined map[string]struct{}

	logger zerolog.Logger
}

// NewClient constructs a Client for a resolved (possibly nil) identity.
func NewClient(coordinator *Coordinator, wsConn *websocket.Conn, usr *user.User, roomHint string) *Client {
	connID := "anonymous"
	if usr != nil {
		connID = usr.ID
	}

	clientLogger := logx.Logger().With().
		Str("component", "chat").
		Str("client_id", connID).
		Logger()

	return &Client{
		coordinator: coordinator,
		conn:        wsConn,
		user:        usr,
		roomHint:    roomHint,
		send:        make(chan []byte, sendQueueSize),
		joined:      make(map[string]struct{}),
		logger:      clientLogger,
	}
}

// ReadPump reads frames from the connection until it closes, dispatching each
// inbound event to the Coordinator. It handles heartbeats (Pong) and performs
// transport cleanup on exit.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInbound(ctx, frame)
	}
}

// cleanupOnDisconnect runs when ReadPump terminates: transport-level cleanup
// only, store membership is untouched so the user stays in their rooms across
// reconnects.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.coordinator.Disconnect(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInbound parses one frame and dispatches it through the closed
// inbound event set. Every failure is mapped to a named error event sent to
// this connection only.
func (c *Client) processInbound(ctx context.Context, frame []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	switch ParseInboundKind(envelope.Event) {
	case InboundCreateRoom:
		var payload CreateRoomPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.coordinator.CreateRoom(ctx, c, payload.Name, payload.Description)

	case InboundJoinRoom:
		c.coordinator.JoinRoom(ctx, c, decodeRoomID(envelope.Payload))

	case InboundLeaveRoom:
		c.coordinator.LeaveRoom(ctx, c, decodeRoomID(envelope.Payload))

	case InboundChatMessage:
		var payload ChatMessagePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.coordinator.PostMessage(ctx, c, payload.RoomID, payload.Message)

	case InboundUnknown:
		c.logger.Warn().Str("event", envelope.Event).Msg("Client sent unsupported event")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
	}
}

// decodeRoomID accepts the room id either as a bare JSON string or wrapped in
// a {"roomId": ...} object. Absent or malformed payloads decode to "".
func decodeRoomID(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}

	var id string
	if err := json.Unmarshal(payload, &id); err == nil {
		return id
	}

	var wrapped struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil {
		return wrapped.RoomID
	}

	return ""
}

// WritePump drains the send queue onto the connection and keeps the
// heartbeat alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one queued frame to the connection.
// Returns false when the WritePump loop should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePing sends a heartbeat ping. Returns false on write failure.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// Emit marshals an event envelope and queues it for this connection. A full
// queue drops the frame and tears the slow connection down.
func (c *Client) Emit(event string, payload any) {
	frame, err := json.Marshal(OutboundEnvelope{Event: event, Payload: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling outbound event")
		return
	}

	c.enqueue(frame)
}

// enqueue performs the non-blocking send onto the outbound queue. A full
// queue means the consumer stopped draining; the connection is closed so the
// pumps run their normal cleanup instead of blocking every broadcast.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, closing slow connection")
		c.Close()
	}
}

// SendError emits the named error event for err to this connection only.
func (c *Client) SendError(customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	c.logger.Warn().
		Int("code", customErr.Code).
		Str("event", customErr.EventName()).
		Msg(customErr.Message)

	c.Emit(customErr.EventName(), ErrorPayload{Message: customErr.Message})
}

// Close tears down the underlying transport, if any. The pumps observe the
// closed connection and exit on their own.
func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// String identifies the connection in logs.
func (c *Client) String() string {
	if c.user == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%s (%s)", c.user.DisplayName, c.user.ID)
}
