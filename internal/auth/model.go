package auth

import "time"

// User represents a row in the users table. The ID is the opaque owner
// identifier all team rows are scoped by: a UUID for anonymous sessions, the
// Telegram numeric id rendered as text for Telegram sign-ins.
type User struct {
	ID          string
	DisplayName string
	Username    string
	Anonymous   bool
	TokenPrefix string
	TokenHash   string
	CreatedAt   time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID      string
	DisplayName string
	Username    string
	Anonymous   bool
}
