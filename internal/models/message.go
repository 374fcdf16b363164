package models

import "time"

// Message represents a persisted chat message. Exactly one of RecipientID
// and GroupID is set.
type Message struct {
	ID          int64     `json:"id" db:"id"`
	SenderID    int64     `json:"sender_id" db:"sender_id"`
	RecipientID *int64    `json:"recipient_id,omitempty" db:"recipient_id"` // Null for group messages
	GroupID     *int64    `json:"group_id,omitempty" db:"group_id"`         // Null for direct messages
	Content     string    `json:"content" db:"content"`
	Kind        Kind      `json:"kind" db:"kind"`
	Timestamp   time.Time `json:"timestamp" db:"created_at"`
}

// EnrichedMessage is a message joined with its sender's display name. It is
// the record returned to callers and delivered on the realtime channel.
type EnrichedMessage struct {
	Message
	SenderName string `json:"sender_name"`
}

// IsGroup reports whether the message belongs to a group conversation.
func (m *Message) IsGroup() bool {
	return m.GroupID != nil
}
