package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password      TEXT NOT NULL,
	profile_photo TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS groups (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	photo      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id BIGINT NOT NULL REFERENCES groups(id),
	user_id  BIGINT NOT NULL REFERENCES users(id),
	PRIMARY KEY (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id           BIGSERIAL PRIMARY KEY,
	sender_id    BIGINT NOT NULL REFERENCES users(id),
	recipient_id BIGINT REFERENCES users(id),
	group_id     BIGINT REFERENCES groups(id),
	content      TEXT NOT NULL,
	kind         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
	CONSTRAINT messages_one_conversation CHECK ((recipient_id IS NULL) <> (group_id IS NULL))
);

CREATE INDEX IF NOT EXISTS messages_direct_idx ON messages (sender_id, recipient_id, created_at);
CREATE INDEX IF NOT EXISTS messages_group_idx ON messages (group_id, created_at);
CREATE INDEX IF NOT EXISTS group_members_user_idx ON group_members (user_id);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
