package store

import (
	"context"

	"charla/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateGroup inserts the group and its memberships in one transaction.
func (s *Store) CreateGroup(ctx context.Context, name string, photo *string, memberIDs []int64) (int64, error) {
	var groupID int64
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			err := tx.QueryRow(ctx, `
				INSERT INTO groups (name, photo) VALUES ($1, $2) RETURNING id
			`, name, photo).Scan(&groupID)
			if err != nil {
				return err
			}

			for _, memberID := range memberIDs {
				_, err := tx.Exec(ctx, `
					INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
					ON CONFLICT DO NOTHING
				`, groupID, memberID)
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return 0, wrap("create group", err)
	}
	return groupID, nil
}

// GroupsForUser lists the groups a user belongs to.
func (s *Store) GroupsForUser(ctx context.Context, userID int64) ([]models.Group, error) {
	groups := []models.Group{}
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT g.id, g.name, g.photo, g.created_at
			FROM groups g
			INNER JOIN group_members gm ON g.id = gm.group_id
			WHERE gm.user_id = $1
			ORDER BY g.id
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var g models.Group
			if err := rows.Scan(&g.ID, &g.Name, &g.Photo, &g.CreatedAt); err != nil {
				return err
			}
			groups = append(groups, g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, wrap("list groups", err)
	}
	return groups, nil
}
