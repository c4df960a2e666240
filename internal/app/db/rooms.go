package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studychat/internal/app/chat"
)

const roomColumns = `id::text, name, description, type, status, COALESCE(creator_id::text, ''), COALESCE(group_id::text, ''), created_at, updated_at`

func scanRoom(row pgx.Row) (*chat.Room, error) {
	var r chat.Room
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Type, &r.Status,
		&r.CreatorID, &r.GroupID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("scan room: %w", err)
	}
	return &r, nil
}

// GetRoomByID returns an active room, or chat.ErrNotFound.
func (s *Store) GetRoomByID(ctx context.Context, id string) (*chat.Room, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1 AND status = 'active'`, id)
	return scanRoom(row)
}

// DefaultRoom returns the permanent default room.
func (s *Store) DefaultRoom(ctx context.Context) (*chat.Room, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE type = 'default' AND status = 'active'`)
	return scanRoom(row)
}

// EnsureDefaultRoom creates the default room if it does not exist yet and
// returns it. A concurrent boot creating it first is fine; the single-default
// index makes the insert a no-op in that case.
func (s *Store) EnsureDefaultRoom(ctx context.Context, id, name, description string) (*chat.Room, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (id, name, description, type)
		VALUES ($1, $2, $3, 'default')
		ON CONFLICT DO NOTHING`,
		id, name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure default room: %w", err)
	}
	return s.DefaultRoom(ctx)
}

// RoomNameExists reports whether an active room already uses the name.
func (s *Store) RoomNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE name = $1 AND status = 'active')`, name,
	).Scan(&exists)
	return exists, err
}

// CreateRoom persists a new room. A unique violation on the active-name index
// maps to chat.ErrNameTaken so the caller can recompute the suffix.
func (s *Store) CreateRoom(ctx context.Context, room *chat.Room) error {
	var creatorID, groupID any
	if room.CreatorID != "" {
		creatorID = room.CreatorID
	}
	if room.GroupID != "" {
		groupID = room.GroupID
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, name, description, type, creator_id, group_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		room.ID, room.Name, room.Description, room.Type, creatorID, groupID,
	).Scan(&room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return chat.ErrNameTaken
		}
		return fmt.Errorf("create room: %w", err)
	}

	room.Status = chat.RoomStatusActive
	return nil
}

// AddRoomMember adds the user to the room's member set if absent. The
// conditional insert is a single statement, so concurrent joins to the same
// room cannot lose each other's update.
func (s *Store) AddRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		roomID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("add room member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveRoomMember removes the user from the room's member set.
func (s *Store) RemoveRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("remove room member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IsRoomMember reports whether the user belongs to the room's member set.
func (s *Store) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&exists)
	return exists, err
}

// RoomMemberCount returns the size of the room's member set.
func (s *Store) RoomMemberCount(ctx context.Context, roomID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM room_members WHERE room_id = $1`, roomID,
	).Scan(&count)
	return count, err
}

// DeleteRoomWithMessages removes the room and its entire message log in one
// transaction. Membership rows go with the room via cascade.
func (s *Store) DeleteRoomWithMessages(ctx context.Context, roomID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete room tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("delete room messages: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	return tx.Commit(ctx)
}

// ListRoomsForUser returns the active rooms visible to the user: the default
// room plus every room the user is a member of.
func (s *Store) ListRoomsForUser(ctx context.Context, userID string) ([]chat.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE status = 'active'
		  AND (type = 'default'
		       OR id IN (SELECT room_id FROM room_members WHERE user_id = $1))
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var result []chat.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *room)
	}
	return result, rows.Err()
}
