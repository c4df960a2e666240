/*
Package chat contains the core logic for handling real-time chat rooms, user
connections, and message broadcasting.

This file defines the Room and Message entities shared between the coordinator
and the persistent store.
*/
package chat

import (
	"time"

	"studychat/internal/app/user"
)

const (
	// MaxMessageLength is the maximum message body length in runes for
	// non-privileged authors.
	MaxMessageLength = 500

	// HistoryLimit is the number of messages sent to a joining connection.
	HistoryLimit = 50
)

// Room types. User rooms are the ad-hoc rooms created over the chat protocol;
// group rooms belong to a student group and default is the single permanent room.
const (
	RoomTypeDefault = "default"
	RoomTypeGroup   = "group"
	RoomTypeUser    = "user"
)

// Room lifecycle states.
const (
	RoomStatusActive  = "active"
	RoomStatusDeleted = "deleted"
)

// Room is a named channel grouping a set of users and an ordered message log.
// Membership lives in the store, not on the struct.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	CreatorID   string    `json:"creatorId,omitempty"`
	GroupID     string    `json:"groupId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsDefault reports whether this is the permanent default room.
func (r *Room) IsDefault() bool {
	return r.Type == RoomTypeDefault
}

// Deletable reports whether the room may be removed once its membership is empty.
// Default and group rooms survive empty membership.
func (r *Room) Deletable() bool {
	return r.Type == RoomTypeUser
}

// Message lifecycle states. Messages are immutable once persisted except for
// this soft status.
const (
	MessageStatusActive  = "active"
	MessageStatusHidden  = "hidden"
	MessageStatusDeleted = "deleted"
)

// IsValidMessageStatus reports whether s belongs to the message status vocabulary.
func IsValidMessageStatus(s string) bool {
	return s == MessageStatusActive || s == MessageStatusHidden || s == MessageStatusDeleted
}

// Message is one persisted chat message.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageView is a persisted message joined with the author's display snapshot,
// the shape broadcast to connections and returned as history.
type MessageView struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"roomId"`
	Body      string      `json:"message"`
	Author    user.Public `json:"saidBy"`
	CreatedAt time.Time   `json:"createdAt"`
}
