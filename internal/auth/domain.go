package auth

import "time"

// User represents an authenticated user account. Username is optional and
// empty when the account was registered with email only.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
