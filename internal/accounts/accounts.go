// Package accounts handles registration and credential checks.
package accounts

import (
	"context"
	"errors"
	"io"
	"net/mail"
	"strings"

	"charla/server/internal/apperr"
	"charla/server/internal/blob"
	"charla/server/internal/models"
)

// UserStore is the user persistence the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, password, photo string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
}

// Registration is a sign-up request.
type Registration struct {
	Name      string
	Email     string
	Password  string
	Photo     io.Reader
	PhotoName string
	PhotoSize int64
}

// Service registers users and checks credentials.
type Service struct {
	users     UserStore
	blobs     blob.Store
	passwords Passwords
}

// NewService creates a Service
func NewService(users UserStore, blobs blob.Store, passwords Passwords) *Service {
	if passwords == nil {
		passwords = Plaintext{}
	}
	return &Service{users: users, blobs: blobs, passwords: passwords}
}

// Register validates the request, stores the profile photo and creates the
// user. A missing photo or a taken email fails before anything is written.
func (s *Service) Register(ctx context.Context, reg Registration) (*models.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = normalizeEmail(reg.Email)

	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return nil, apperr.Validation("Name, email and password are required")
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return nil, apperr.Validation("Invalid email address")
	}
	if reg.Photo == nil || reg.PhotoSize <= 0 {
		return nil, apperr.Upload("No profile photo uploaded")
	}

	exists, err := s.users.EmailExists(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Duplicate("Email already registered")
	}

	photo, err := s.blobs.Put(ctx, reg.PhotoName, reg.Photo, reg.PhotoSize)
	if err != nil {
		return nil, apperr.Persistence("store profile photo", err)
	}

	stored, err := s.passwords.Hash(reg.Password)
	if err != nil {
		return nil, apperr.Persistence("hash password", err)
	}

	return s.users.CreateUser(ctx, reg.Name, reg.Email, stored, photo)
}

// Login returns the user matching the credentials or apperr.ErrAuth.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrAuth
	}
	if err != nil {
		return nil, err
	}

	if !s.passwords.Check(user.Password, password) {
		return nil, apperr.ErrAuth
	}
	return user, nil
}

// EmailExists reports whether the email is registered.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.EmailExists(ctx, normalizeEmail(email))
}

// ListUsers returns every user's public summary.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return s.users.ListUsers(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
