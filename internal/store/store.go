// Package store implements persistence for users, groups and messages on
// top of the bounded Postgres pool.
package store

import (
	"context"

	"charla/server/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs queries through database.DB so every operation counts against
// the pool's queue limit.
type Store struct {
	db *database.DB
}

// New creates a Store
func New(db *database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, release, err := s.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(conn)
}
