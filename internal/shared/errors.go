package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. The message is shared by
	// unknown identifier, inactive account, and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession indicates the request carries no resolvable session.
	ErrNoSession = errors.New("no session")
	// ErrPermissionDenied indicates a resolved actor lacks the required action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDuplicateEmail occurs when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername occurs when registering a username that already exists.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrTooManyAttempts occurs when the login throttle trips.
	ErrTooManyAttempts = errors.New("too many login attempts")
)
