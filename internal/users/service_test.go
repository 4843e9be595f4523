package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpile-ims/stockpile/internal/auth"
	"github.com/stockpile-ims/stockpile/internal/rbac"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

type stubUserRepo struct {
	assignments map[int64][]int64
}

func (s *stubUserRepo) ListUsers(context.Context) ([]User, error) { return nil, nil }

func (s *stubUserRepo) AssignRole(_ context.Context, userID, roleID int64) error {
	if s.assignments == nil {
		s.assignments = map[int64][]int64{}
	}
	s.assignments[userID] = append(s.assignments[userID], roleID)
	return nil
}

func (s *stubUserRepo) RemoveRole(_ context.Context, userID, roleID int64) error {
	kept := s.assignments[userID][:0]
	for _, id := range s.assignments[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	s.assignments[userID] = kept
	return nil
}

type stubAccounts struct {
	created []*auth.User
	err     error
}

func (s *stubAccounts) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubAccounts) FindByUsername(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubAccounts) FindByID(context.Context, int64) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubAccounts) LoadRoles(context.Context, int64) ([]rbac.ActorRole, error) {
	return nil, nil
}

func (s *stubAccounts) CreateUser(_ context.Context, user *auth.User) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.created = append(s.created, user)
	return int64(len(s.created)), nil
}

func TestCreateUserHashesPasswordAndAssignsRoles(t *testing.T) {
	repo := &stubUserRepo{}
	accounts := &stubAccounts{}
	svc := NewService(repo, accounts)

	id, err := svc.CreateUser(context.Background(), NewUserInput{
		Email:    "  Staff@Example.COM ",
		Username: " staffer ",
		Password: "correct horse battery",
		RoleIDs:  []int64{3, 5},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	created := accounts.created[0]
	require.Equal(t, "staff@example.com", created.Email)
	require.Equal(t, "staffer", created.Username)
	require.True(t, created.IsActive)
	require.NotEqual(t, "correct horse battery", created.PasswordHash)
	require.True(t, auth.VerifyPassword("correct horse battery", created.PasswordHash))

	require.Equal(t, []int64{3, 5}, repo.assignments[id])
}

func TestCreateUserRequiresEmail(t *testing.T) {
	svc := NewService(&stubUserRepo{}, &stubAccounts{})
	_, err := svc.CreateUser(context.Background(), NewUserInput{Password: "secretsecret"})
	require.Error(t, err)
}

func TestCreateUserPropagatesDuplicate(t *testing.T) {
	svc := NewService(&stubUserRepo{}, &stubAccounts{err: shared.ErrDuplicateEmail})
	_, err := svc.CreateUser(context.Background(), NewUserInput{
		Email:    "dup@example.com",
		Password: "secretsecret",
	})
	require.ErrorIs(t, err, shared.ErrDuplicateEmail)
}

func TestAssignAndRemoveRole(t *testing.T) {
	repo := &stubUserRepo{}
	svc := NewService(repo, &stubAccounts{})
	ctx := context.Background()

	require.NoError(t, svc.AssignRole(ctx, 7, 1))
	require.NoError(t, svc.AssignRole(ctx, 7, 2))
	require.Equal(t, []int64{1, 2}, repo.assignments[7])

	require.NoError(t, svc.RemoveRole(ctx, 7, 1))
	require.Equal(t, []int64{2}, repo.assignments[7])
}
