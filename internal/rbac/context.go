package rbac

import "context"

type actorContextKey struct{}

type permissionsContextKey struct{}

// ContextWithActor stores the actor in context along with its permission set,
// flattened once. Handlers and middleware reuse the flattened set for every
// check within the request instead of re-walking role associations.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	ctx = context.WithValue(ctx, actorContextKey{}, actor)
	return context.WithValue(ctx, permissionsContextKey{}, actor.Flatten())
}

// ActorFromContext extracts the actor, or nil when the request is anonymous.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

// PermissionsFromContext extracts the flattened permission set stored by
// ContextWithActor. Anonymous requests yield the empty set.
func PermissionsFromContext(ctx context.Context) PermissionSet {
	if set, ok := ctx.Value(permissionsContextKey{}).(PermissionSet); ok {
		return set
	}
	return PermissionSet{}
}

// Allowed reports whether the request context holds the given action.
func Allowed(ctx context.Context, action string) bool {
	return PermissionsFromContext(ctx).Has(action)
}
