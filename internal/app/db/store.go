package db

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides typed queries over the connection pool. It implements
// chat.Store plus the account queries the HTTP handlers use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
