package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory RepositoryPort. WithTx copies the state, runs the
// callback against the copy, and publishes it only on success, matching the
// all-or-nothing behaviour of the real transaction.
type memRepo struct {
	state memState
}

type memState struct {
	roles       map[int64]Role
	permissions map[int64]Permission
	rolePerms   map[int64][]int64
	assignments map[int64]int64
	nextRoleID  int64
	nextPermID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{state: memState{
		roles:       map[int64]Role{},
		permissions: map[int64]Permission{},
		rolePerms:   map[int64][]int64{},
		assignments: map[int64]int64{},
		nextRoleID:  1,
		nextPermID:  1,
	}}
}

func (s memState) clone() memState {
	out := memState{
		roles:       make(map[int64]Role, len(s.roles)),
		permissions: make(map[int64]Permission, len(s.permissions)),
		rolePerms:   make(map[int64][]int64, len(s.rolePerms)),
		assignments: make(map[int64]int64, len(s.assignments)),
		nextRoleID:  s.nextRoleID,
		nextPermID:  s.nextPermID,
	}
	for id, role := range s.roles {
		out.roles[id] = role
	}
	for id, perm := range s.permissions {
		out.permissions[id] = perm
	}
	for id, perms := range s.rolePerms {
		out.rolePerms[id] = append([]int64(nil), perms...)
	}
	for id, count := range s.assignments {
		out.assignments[id] = count
	}
	return out
}

func (r *memRepo) ListRoles(_ context.Context) ([]Role, error) {
	roles := make([]Role, 0, len(r.state.roles))
	for id := int64(1); id < r.state.nextRoleID; id++ {
		if role, ok := r.state.roles[id]; ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (r *memRepo) GetRole(_ context.Context, id int64) (Role, error) {
	role, ok := r.state.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (r *memRepo) GetRolePermissionIDs(_ context.Context, id int64) ([]int64, error) {
	return append([]int64(nil), r.state.rolePerms[id]...), nil
}

func (r *memRepo) ListPermissions(_ context.Context) ([]Permission, error) {
	perms := make([]Permission, 0, len(r.state.permissions))
	for id := int64(1); id < r.state.nextPermID; id++ {
		if perm, ok := r.state.permissions[id]; ok {
			perms = append(perms, perm)
		}
	}
	return perms, nil
}

func (r *memRepo) CreatePermission(_ context.Context, action, description string) (Permission, error) {
	for _, perm := range r.state.permissions {
		if perm.Action == action {
			return Permission{}, ErrDuplicateAction
		}
	}
	perm := Permission{ID: r.state.nextPermID, Action: action, Description: description, CreatedAt: time.Now()}
	r.state.permissions[perm.ID] = perm
	r.state.nextPermID++
	return perm, nil
}

func (r *memRepo) CountRoleAssignments(_ context.Context, roleID int64) (int64, error) {
	return r.state.assignments[roleID], nil
}

func (r *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memTx{state: r.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

type memTx struct {
	state memState
}

func (t *memTx) InsertRole(_ context.Context, name, description string) (Role, error) {
	for _, role := range t.state.roles {
		if role.Name == name {
			return Role{}, ErrDuplicateRoleName
		}
	}
	role := Role{ID: t.state.nextRoleID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	t.state.roles[role.ID] = role
	t.state.nextRoleID++
	return role, nil
}

func (t *memTx) LockRole(_ context.Context, id int64) (Role, error) {
	role, ok := t.state.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (t *memTx) UpdateRole(_ context.Context, id int64, name, description string) error {
	role, ok := t.state.roles[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range t.state.roles {
		if otherID != id && other.Name == name {
			return ErrDuplicateRoleName
		}
	}
	role.Name = name
	role.Description = description
	role.UpdatedAt = time.Now()
	t.state.roles[id] = role
	return nil
}

func (t *memTx) DeleteRole(_ context.Context, id int64) (int64, error) {
	if _, ok := t.state.roles[id]; !ok {
		return 0, nil
	}
	delete(t.state.roles, id)
	return 1, nil
}

func (t *memTx) DeleteRolePermissions(_ context.Context, roleID int64) error {
	delete(t.state.rolePerms, roleID)
	return nil
}

func (t *memTx) InsertRolePermission(_ context.Context, roleID, permissionID int64) error {
	if _, ok := t.state.permissions[permissionID]; !ok {
		return ErrUnknownPermission
	}
	t.state.rolePerms[roleID] = append(t.state.rolePerms[roleID], permissionID)
	return nil
}

func seedPermissions(t *testing.T, svc *Service, actions ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(actions))
	for _, action := range actions {
		perm, err := svc.CreatePermission(context.Background(), action, "")
		require.NoError(t, err)
		ids = append(ids, perm.ID)
	}
	return ids
}

func TestCreateRoleWithPermissions(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ids := seedPermissions(t, svc, ActionInventoryManage, ActionInventoryView)

	role, err := svc.CreateRole(ctx, "STOREKEEPER", "runs the warehouse floor", ids)
	require.NoError(t, err)
	require.NotZero(t, role.ID)

	detail, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, "STOREKEEPER", detail.Name)
	require.ElementsMatch(t, ids, detail.PermissionIDs)
}

func TestCreateRoleDuplicateName(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "ADMIN", "", nil)
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, "ADMIN", "", nil)
	require.ErrorIs(t, err, ErrDuplicateRoleName)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
}

func TestCreateRoleUnknownPermissionRollsBack(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "GHOST", "", []int64{999})
	require.ErrorIs(t, err, ErrUnknownPermission)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Empty(t, roles, "failed create must not leave a role behind")
}

func TestUpdateRoleReplacesPermissionSet(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ids := seedPermissions(t, svc, ActionInventoryManage, ActionInventoryView, ActionReportsView)
	role, err := svc.CreateRole(ctx, "AUDITOR", "", []int64{ids[0], ids[1]})
	require.NoError(t, err)

	// {manage, view} -> {manage, reports}: view must go away entirely.
	err = svc.UpdateRole(ctx, role.ID, "AUDITOR", "read only", []int64{ids[0], ids[2]})
	require.NoError(t, err)

	detail, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, "read only", detail.Description)
	require.ElementsMatch(t, []int64{ids[0], ids[2]}, detail.PermissionIDs)
}

func TestUpdateRoleFailureLeavesSetUnchanged(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ids := seedPermissions(t, svc, ActionInventoryManage, ActionInventoryView)
	role, err := svc.CreateRole(ctx, "AUDITOR", "", ids)
	require.NoError(t, err)

	err = svc.UpdateRole(ctx, role.ID, "AUDITOR", "", []int64{ids[0], 999})
	require.ErrorIs(t, err, ErrUnknownPermission)

	detail, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, ids, detail.PermissionIDs, "failed update must leave the old set intact")
}

func TestUpdateRoleNotFound(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	err := svc.UpdateRole(context.Background(), 42, "NOPE", "", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRoleRestrictedWhileAssigned(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "STAFF", "", nil)
	require.NoError(t, err)
	repo.state.assignments[role.ID] = 3

	err = svc.DeleteRole(ctx, role.ID)
	require.ErrorIs(t, err, ErrRoleInUse)

	_, err = svc.GetRole(ctx, role.ID)
	require.NoError(t, err, "role must survive a restricted delete")
}

func TestDeleteRoleRemovesRoleAndLinks(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ids := seedPermissions(t, svc, ActionReportsView)
	role, err := svc.CreateRole(ctx, "TEMP", "", ids)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))

	_, err = svc.GetRole(ctx, role.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, repo.state.rolePerms[role.ID])
}

func TestDeleteRoleNotFound(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	require.ErrorIs(t, svc.DeleteRole(context.Background(), 42), ErrNotFound)
}

func TestCreatePermissionValidatesAction(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	perm, err := svc.CreatePermission(ctx, "  Returns.Manage ", "handle returns")
	require.NoError(t, err)
	require.Equal(t, "returns.manage", perm.Action)

	for _, bad := range []string{"", "manage", "inventory.delete", "Inventory manage", "1inventory.view"} {
		_, err := svc.CreatePermission(ctx, bad, "")
		require.Error(t, err, "action %q should be rejected", bad)
	}

	_, err = svc.CreatePermission(ctx, "returns.manage", "")
	require.ErrorIs(t, err, ErrDuplicateAction)
}

func TestCreateRoleDeduplicatesPermissionIDs(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ids := seedPermissions(t, svc, ActionInventoryView)
	role, err := svc.CreateRole(ctx, "VIEWER", "", []int64{ids[0], ids[0], ids[0]})
	require.NoError(t, err)

	detail, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{ids[0]}, detail.PermissionIDs)
}
