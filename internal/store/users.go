package store

import (
	"context"
	"errors"
	"fmt"

	"charla/server/internal/apperr"
	"charla/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// CreateUser inserts a user. A taken email yields apperr.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, name, email, password, photo string) (*models.User, error) {
	var user models.User
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO users (name, email, password, profile_photo)
			VALUES ($1, $2, $3, $4)
			RETURNING id, name, email, password, profile_photo, created_at
		`, name, email, password, photo).
			Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.ProfilePhoto, &user.CreatedAt)
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, apperr.Duplicate("Email already registered")
	}
	if err != nil {
		return nil, wrap("create user", err)
	}
	return &user, nil
}

// UserByEmail looks a user up by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT id, name, email, password, profile_photo, created_at
			FROM users WHERE email = $1
		`, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.ProfilePhoto, &user.CreatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, wrap("find user", err)
	}
	return &user, nil
}

// EmailExists reports whether an email is already registered.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	})
	if err != nil {
		return false, wrap("check email", err)
	}
	return exists, nil
}

// ListUsers returns every user's public summary.
func (s *Store) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, "SELECT id, name, profile_photo FROM users ORDER BY id")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u models.UserSummary
			if err := rows.Scan(&u.ID, &u.Name, &u.ProfilePhoto); err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}
