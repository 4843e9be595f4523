package rbac

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("rbac: not found")
	// ErrDuplicateRoleName indicates a role with the same name already exists.
	ErrDuplicateRoleName = errors.New("rbac: role name already exists")
	// ErrDuplicateAction indicates a permission with the same action already exists.
	ErrDuplicateAction = errors.New("rbac: permission action already exists")
	// ErrUnknownPermission indicates a referenced permission ID does not exist.
	ErrUnknownPermission = errors.New("rbac: unknown permission")
	// ErrRoleInUse indicates the role is still assigned to at least one user.
	ErrRoleInUse = errors.New("rbac: role still assigned to users")
)

var actionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.(manage|view)$`)

// RepositoryPort defines data access methods for role administration.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	GetRolePermissionIDs(ctx context.Context, id int64) ([]int64, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreatePermission(ctx context.Context, action, description string) (Permission, error)
	CountRoleAssignments(ctx context.Context, roleID int64) (int64, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the transactional operations used by the service. All
// methods run inside the transaction opened by WithTx; any returned error
// rolls the whole transaction back.
type TxRepository interface {
	InsertRole(ctx context.Context, name, description string) (Role, error)
	LockRole(ctx context.Context, id int64) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, description string) error
	DeleteRole(ctx context.Context, id int64) (int64, error)
	DeleteRolePermissions(ctx context.Context, roleID int64) error
	InsertRolePermission(ctx context.Context, roleID, permissionID int64) error
}

// Service orchestrates role administration. Every multi-row write runs inside
// a single transaction so readers observe either the previous or the fully
// applied permission set, never a partial one.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles in creation order.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role together with its permission IDs.
func (s *Service) GetRole(ctx context.Context, id int64) (RoleDetail, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	permIDs, err := s.repo.GetRolePermissionIDs(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	return RoleDetail{Role: role, PermissionIDs: permIDs}, nil
}

// ListPermissions returns all permissions ordered by action.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// CreateRole inserts a role and its initial permission links atomically.
func (s *Service) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	var created Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		role, err := tx.InsertRole(ctx, name, strings.TrimSpace(description))
		if err != nil {
			return err
		}
		for _, permID := range dedupeIDs(permissionIDs) {
			if err := tx.InsertRolePermission(ctx, role.ID, permID); err != nil {
				return err
			}
		}
		created = role
		return nil
	})
	if err != nil {
		return Role{}, err
	}
	return created, nil
}

// UpdateRole applies replace-all semantics in one transaction: lock the role
// row, update scalar fields, delete every existing permission link, insert
// the new set. Any failure rolls the whole operation back, leaving the role's
// permission set exactly as it was before the call. The row lock serializes
// concurrent updates of the same role; updates of different roles do not
// block each other.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("rbac: role name required")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.LockRole(ctx, id); err != nil {
			return err
		}
		if err := tx.UpdateRole(ctx, id, name, strings.TrimSpace(description)); err != nil {
			return err
		}
		if err := tx.DeleteRolePermissions(ctx, id); err != nil {
			return err
		}
		for _, permID := range dedupeIDs(permissionIDs) {
			if err := tx.InsertRolePermission(ctx, id, permID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRole removes a role and its permission links. A role still assigned
// to users is not deleted; callers must detach users first. Restricting here
// keeps an admin mistake from silently revoking permissions for every holder
// of the role.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	assigned, err := s.repo.CountRoleAssignments(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return ErrRoleInUse
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.LockRole(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteRolePermissions(ctx, id); err != nil {
			return err
		}
		rows, err := tx.DeleteRole(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreatePermission inserts a new permission action.
func (s *Service) CreatePermission(ctx context.Context, action, description string) (Permission, error) {
	action = strings.TrimSpace(strings.ToLower(action))
	if !actionPattern.MatchString(action) {
		return Permission{}, fmt.Errorf("rbac: action %q must match <module>.<manage|view>", action)
	}
	return s.repo.CreatePermission(ctx, action, strings.TrimSpace(description))
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
