package auth

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidToken is returned when a session token matches no user.
var ErrInvalidToken = errors.New("invalid session token")

// UserRepository provides operations on the users table.
type UserRepository interface {
	// Upsert inserts the user or, for an existing ID, refreshes the profile
	// fields and session token.
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	FindByPrefix(ctx context.Context, prefix string) ([]User, error)
}
