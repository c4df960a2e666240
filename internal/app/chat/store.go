package chat

import (
	"context"
	"errors"

	"studychat/internal/app/user"
)

// Store-level sentinel errors. Implementations translate their backend's
// not-found and uniqueness failures into these so the coordinator never
// inspects driver errors.
var (
	// ErrNotFound reports a missing room, user, or message.
	ErrNotFound = errors.New("store: not found")

	// ErrNameTaken reports a room name collision among active rooms.
	ErrNameTaken = errors.New("store: room name taken")
)

// Store is the persistence contract the coordinator drives. Every method is a
// suspension point; the coordinator never assumes atomicity across calls, so
// membership mutations must each be a single conditional update at the store.
type Store interface {
	// GetUserByID returns the user record for a fresh display snapshot.
	GetUserByID(ctx context.Context, id string) (*user.User, error)

	// GetRoomByID returns an active room, or ErrNotFound.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// DefaultRoom returns the permanent default room.
	DefaultRoom(ctx context.Context) (*Room, error)

	// RoomNameExists reports whether an active room already uses the name.
	RoomNameExists(ctx context.Context, name string) (bool, error)

	// CreateRoom persists a new room, or returns ErrNameTaken when a
	// concurrent create claimed the same active name first.
	CreateRoom(ctx context.Context, room *Room) error

	// AddRoomMember adds the user to the room's member set if absent.
	// It reports whether the user was newly added. Concurrent adds to the
	// same room must both land without one overwriting the other.
	AddRoomMember(ctx context.Context, roomID, userID string) (bool, error)

	// RemoveRoomMember removes the user from the room's member set.
	// It reports whether the user was a member; removing a non-member is a no-op.
	RemoveRoomMember(ctx context.Context, roomID, userID string) (bool, error)

	// IsRoomMember reports whether the user belongs to the room's member set.
	IsRoomMember(ctx context.Context, roomID, userID string) (bool, error)

	// RoomMemberCount returns the size of the room's member set.
	RoomMemberCount(ctx context.Context, roomID string) (int, error)

	// DeleteRoomWithMessages removes the room and its entire message log in
	// one transaction.
	DeleteRoomWithMessages(ctx context.Context, roomID string) error

	// InsertMessage persists a message, filling in its creation time.
	InsertMessage(ctx context.Context, msg *Message) error

	// LastRoomMessages returns up to limit active messages for the room,
	// ordered oldest-first, with author display fields resolved.
	LastRoomMessages(ctx context.Context, roomID string, limit int) ([]MessageView, error)
}
