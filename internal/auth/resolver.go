package auth

import (
	"context"
	"errors"

	"github.com/stockpile-ims/stockpile/internal/rbac"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// Resolver turns a raw session token into a fully loaded actor. It is the
// cryptographic stage of the two-tier guard: signature and expiry are checked
// here, then the actor is rebuilt from the store.
type Resolver struct {
	codec *TokenCodec
	repo  Repository
}

// NewResolver constructs a Resolver.
func NewResolver(codec *TokenCodec, repo Repository) *Resolver {
	return &Resolver{codec: codec, repo: repo}
}

// Resolve returns the actor for the raw token, or (nil, nil) when there is no
// usable session: absent token, bad signature, expiry, or a user that no
// longer exists. A stale-but-correctly-signed token for a deleted user must
// not resolve. Only infrastructure failures surface as errors.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*rbac.Actor, error) {
	if rawToken == "" {
		return nil, nil
	}
	claims, err := r.codec.Verify(rawToken)
	if err != nil {
		return nil, nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil
	}
	user, err := r.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	roles, err := r.repo.LoadRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &rbac.Actor{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Roles:    roles,
	}, nil
}
