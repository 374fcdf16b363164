package store

import (
	"context"
	"errors"
	"fmt"

	"charla/server/internal/apperr"
	"charla/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const enrichedColumns = `
	m.id, m.sender_id, m.recipient_id, m.group_id, m.content, m.kind, m.created_at, u.name`

// InsertDirect persists a direct message and returns its id.
func (s *Store) InsertDirect(ctx context.Context, senderID, recipientID int64, content string, kind models.Kind) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO messages (sender_id, recipient_id, content, kind)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, senderID, recipientID, content, string(kind)).Scan(&id)
	})
	if err != nil {
		return 0, wrap("insert direct message", err)
	}
	return id, nil
}

// InsertGroup persists a group message and returns its id.
func (s *Store) InsertGroup(ctx context.Context, senderID, groupID int64, content string, kind models.Kind) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO messages (sender_id, group_id, content, kind)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, senderID, groupID, content, string(kind)).Scan(&id)
	})
	if err != nil {
		return 0, wrap("insert group message", err)
	}
	return id, nil
}

// FetchEnriched returns a message joined with its sender's name.
func (s *Store) FetchEnriched(ctx context.Context, messageID int64) (*models.EnrichedMessage, error) {
	var msg *models.EnrichedMessage
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			SELECT `+enrichedColumns+`
			FROM messages m
			INNER JOIN users u ON m.sender_id = u.id
			WHERE m.id = $1
		`, messageID)

		var err error
		msg, err = scanEnriched(row)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("message %d: %w", messageID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, wrap("fetch message", err)
	}
	return msg, nil
}

// FetchDirectHistory returns the conversation between two users, oldest
// first. The pair is matched in either order.
func (s *Store) FetchDirectHistory(ctx context.Context, userA, userB int64) ([]models.EnrichedMessage, error) {
	messages, err := s.queryEnriched(ctx, `
		SELECT `+enrichedColumns+`
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at, m.id
	`, userA, userB)
	if err != nil {
		return nil, wrap("fetch direct history", err)
	}
	return messages, nil
}

// FetchGroupHistory returns every message of a group, oldest first.
func (s *Store) FetchGroupHistory(ctx context.Context, groupID int64) ([]models.EnrichedMessage, error) {
	messages, err := s.queryEnriched(ctx, `
		SELECT `+enrichedColumns+`
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE m.group_id = $1
		ORDER BY m.created_at, m.id
	`, groupID)
	if err != nil {
		return nil, wrap("fetch group history", err)
	}
	return messages, nil
}

func (s *Store) queryEnriched(ctx context.Context, sql string, args ...any) ([]models.EnrichedMessage, error) {
	messages := []models.EnrichedMessage{}
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			msg, err := scanEnriched(rows)
			if err != nil {
				return err
			}
			messages = append(messages, *msg)
		}
		return rows.Err()
	})
	return messages, err
}

func scanEnriched(row pgx.Row) (*models.EnrichedMessage, error) {
	var msg models.EnrichedMessage
	var kind string
	err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.GroupID,
		&msg.Content, &kind, &msg.Timestamp, &msg.SenderName,
	)
	if err != nil {
		return nil, err
	}
	msg.Kind = models.Kind(kind)
	return &msg, nil
}

func wrap(op string, err error) error {
	return apperr.Classify(op, err)
}
