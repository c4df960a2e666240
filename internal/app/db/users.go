package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studychat/internal/app/chat"
	"studychat/internal/app/user"
)

const userColumns = `id::text, username, email, password_hash, display_name, role, profile_pic, bio, account_status, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.Role, &u.ProfilePic, &u.Bio, &u.AccountStatus,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new account. Unique violations on username, email, or
// display name surface unchanged for the caller to classify.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, display_name, role, profile_pic, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.DisplayName, u.Role, u.ProfilePic, u.Bio,
	)
	return err
}

// GetUserByID returns the user record, or chat.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByUsername returns the user record, or chat.ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// UpdateUserProfile updates display name, bio, and avatar key, returning the
// fresh record.
func (s *Store) UpdateUserProfile(ctx context.Context, id, displayName, bio, profilePic string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET display_name = $2, bio = $3, profile_pic = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, displayName, bio, profilePic,
	)
	return scanUser(row)
}

// UpdateUserPassword replaces the stored password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}
