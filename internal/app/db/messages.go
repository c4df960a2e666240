package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studychat/internal/app/chat"
)

// InsertMessage persists a message and fills in its server-assigned creation time.
func (s *Store) InsertMessage(ctx context.Context, msg *chat.Message) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, room_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		msg.ID, msg.RoomID, msg.AuthorID, msg.Body,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	msg.Status = chat.MessageStatusActive
	return nil
}

// LastRoomMessages returns up to limit active messages for the room, ordered
// oldest-first, with the author's display fields joined in. The inner query
// picks the newest window; the outer one restores chronological order.
func (s *Store) LastRoomMessages(ctx context.Context, roomID string, limit int) ([]chat.MessageView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, body, author_id, display_name, profile_pic, created_at
		FROM (
			SELECT m.id::text, m.room_id::text, m.body,
			       u.id::text AS author_id, u.display_name, u.profile_pic,
			       m.created_at
			FROM messages m
			JOIN users u ON u.id = m.author_id
			WHERE m.room_id = $1 AND m.status = 'active'
			ORDER BY m.created_at DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load room history: %w", err)
	}
	defer rows.Close()

	var history []chat.MessageView
	for rows.Next() {
		var v chat.MessageView
		if err := rows.Scan(
			&v.ID, &v.RoomID, &v.Body,
			&v.Author.ID, &v.Author.DisplayName, &v.Author.ProfilePic,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message view: %w", err)
		}
		history = append(history, v)
	}
	return history, rows.Err()
}

// GetMessage returns one message regardless of status, or chat.ErrNotFound.
func (s *Store) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	var m chat.Message
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, room_id::text, author_id::text, body, status, created_at
		FROM messages WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.RoomID, &m.AuthorID, &m.Body, &m.Status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

// SetMessageStatus flips the soft lifecycle status of a message.
func (s *Store) SetMessageStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE messages SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set message status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}
