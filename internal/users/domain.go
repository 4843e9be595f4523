package users

import "time"

// User represents a user account for management, including the names of the
// roles currently assigned.
type User struct {
	ID        int64
	Email     string
	Username  string
	IsActive  bool
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUserInput carries the fields required to create an account.
type NewUserInput struct {
	Email    string
	Username string
	Password string
	RoleIDs  []int64
}
