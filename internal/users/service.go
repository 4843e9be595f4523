package users

import (
	"context"
	"errors"
	"strings"

	"github.com/stockpile-ims/stockpile/internal/auth"
)

// RepositoryPort defines data access methods for user management.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
}

// Service handles user management business logic. Account creation reuses the
// auth repository so password hashing and duplicate mapping live in one
// place.
type Service struct {
	repo     RepositoryPort
	accounts auth.Repository
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, accounts auth.Repository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser registers an account and assigns its initial roles.
func (s *Service) CreateUser(ctx context.Context, input NewUserInput) (int64, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return 0, errors.New("users: email required")
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return 0, err
	}
	id, err := s.accounts.CreateUser(ctx, &auth.User{
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return 0, err
	}
	for _, roleID := range input.RoleIDs {
		if err := s.repo.AssignRole(ctx, id, roleID); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// AssignRole assigns a role to the given user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RemoveRole removes a role from a user. The change is visible on the user's
// next request since actors are reloaded per request.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.RemoveRole(ctx, userID, roleID)
}
