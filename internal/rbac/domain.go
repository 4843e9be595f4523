package rbac

import "time"

// Role represents a named permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability identified by its action string.
type Permission struct {
	ID          int64
	Action      string
	Description string
	CreatedAt   time.Time
}

// RoleDetail is a role together with its attached permission IDs.
type RoleDetail struct {
	Role
	PermissionIDs []int64
}

// ActorRole is one of an actor's roles with its granted actions.
type ActorRole struct {
	Name    string
	Actions []string
}

// Actor is the fully loaded authenticated principal: identity plus roles and
// their permissions, assembled fresh from the store on every request.
type Actor struct {
	ID       int64
	Email    string
	Username string
	Roles    []ActorRole
}

// PermissionSet is a flattened set of permission action strings.
type PermissionSet map[string]struct{}

// Flatten returns the union of permission actions across all of the actor's
// roles. An actor with zero roles flattens to the empty set.
func (a *Actor) Flatten() PermissionSet {
	set := make(PermissionSet)
	if a == nil {
		return set
	}
	for _, role := range a.Roles {
		for _, action := range role.Actions {
			set[action] = struct{}{}
		}
	}
	return set
}

// Has reports whether the exact action is in the set. There is no wildcard or
// prefix matching; "inventory.manage" does not imply "inventory.view".
func (s PermissionSet) Has(action string) bool {
	_, ok := s[action]
	return ok
}
