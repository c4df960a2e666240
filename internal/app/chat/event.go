/*
Package chat contains the core logic for handling real-time chat rooms, user
connections, and message broadcasting.

This file defines the wire protocol: the closed set of inbound event kinds a
connection may send, the outbound event names the server emits, and the
payload structures on both sides. Inbound dispatch is an exhaustive switch
over InboundKind, so adding an event kind is a compile-time-checked change.
*/
package chat

import (
	"encoding/json"

	"studychat/internal/app/user"
)

// InboundKind enumerates every action a connection may request.
type InboundKind int

const (
	// InboundUnknown marks an event name outside the closed set.
	InboundUnknown InboundKind = iota

	// InboundCreateRoom requests creation of a new ad-hoc room.
	InboundCreateRoom

	// InboundJoinRoom subscribes the connection to a room.
	InboundJoinRoom

	// InboundLeaveRoom unsubscribes the connection from a room.
	InboundLeaveRoom

	// InboundChatMessage posts a message to a room.
	InboundChatMessage
)

// Inbound event names as they appear on the wire.
const (
	wireCreateRoom  = "create-room"
	wireJoinRoom    = "join-room"
	wireLeaveRoom   = "leave-room"
	wireChatMessage = "chat-message"
)

// ParseInboundKind maps a wire event name onto the closed InboundKind set.
func ParseInboundKind(name string) InboundKind {
	switch name {
	case wireCreateRoom:
		return InboundCreateRoom
	case wireJoinRoom:
		return InboundJoinRoom
	case wireLeaveRoom:
		return InboundLeaveRoom
	case wireChatMessage:
		return InboundChatMessage
	default:
		return InboundUnknown
	}
}

// InboundEnvelope is the raw frame a connection sends.
type InboundEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoomPayload carries the create-room request body.
type CreateRoomPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ChatMessagePayload carries the chat-message request body.
type ChatMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// Outbound event names.
const (
	// EventRoomInfo delivers room metadata to a joining connection.
	EventRoomInfo = "room-info"

	// EventPreviousMessages delivers bounded history to a joining connection.
	EventPreviousMessages = "previous-messages"

	// EventNewMessage notifies room subscribers about a persisted message.
	EventNewMessage = "new-message"

	// EventUserJoined notifies room subscribers about a user joining.
	EventUserJoined = "user-joined"

	// EventUserLeft notifies room subscribers about a user leaving.
	EventUserLeft = "user-left"

	// EventRoomCreated notifies all connections about a newly created room.
	EventRoomCreated = "room-created"

	// EventRoomRemoved notifies all connections that an empty room was cleaned up.
	EventRoomRemoved = "room-removed"
)

// OutboundEnvelope is the frame the server emits.
type OutboundEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// RoomInfoPayload is the room metadata sent to a joiner and on room-created.
type RoomInfoPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   string `json:"creatorId,omitempty"`
}

// PreviousMessagesPayload is the bounded, oldest-first history for one room.
type PreviousMessagesPayload struct {
	RoomID   string        `json:"roomId"`
	Messages []MessageView `json:"messages"`
}

// UserEventPayload announces a membership change within a room.
type UserEventPayload struct {
	RoomID string      `json:"roomId"`
	User   user.Public `json:"user"`
}

// RoomRemovedPayload announces the cleanup of an empty room.
type RoomRemovedPayload struct {
	RoomID string `json:"roomId"`
}

// ErrorPayload carries a named error event back to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
