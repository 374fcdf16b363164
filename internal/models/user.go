package models

import "time"

// User represents a registered user
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Password     string    `json:"-" db:"password"` // plaintext unless PASSWORD_MODE=bcrypt
	ProfilePhoto string    `json:"profile_photo" db:"profile_photo"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the public listing shape of a user
type UserSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProfilePhoto string `json:"profile_photo"`
}

// UserResponse is what we send to clients after login (without the password)
type UserResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfilePhoto string    `json:"profile_photo"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfilePhoto: u.ProfilePhoto,
		CreatedAt:    u.CreatedAt,
	}
}
