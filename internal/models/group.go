package models

import "time"

// Group represents a chat group
type Group struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Photo     *string   `json:"photo" db:"photo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
