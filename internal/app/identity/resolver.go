/*
Package identity resolves connection credentials to user records.

The chat gateway hands each handshake's token to the Resolver exactly once;
the result travels with the connection for its whole lifetime.
*/
package identity

import (
	"context"
	"errors"

	"studychat/internal/app/chat"
	"studychat/internal/app/user"
	"studychat/internal/pkg/auth/jwt"
	"studychat/internal/pkg/errs"
)

// UserLookup is the slice of the store the resolver needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

// Resolver validates identity tokens and loads the matching user record.
type Resolver struct {
	secret string
	users  UserLookup
}

// NewResolver constructs a Resolver over the given token secret and user lookup.
func NewResolver(secret string, users UserLookup) *Resolver {
	return &Resolver{secret: secret, users: users}
}

// Resolve maps a raw credential to a user record. A missing, malformed, or
// expired token yields ErrUnauthenticated; a valid token without a matching
// active account yields ErrUserNotFound. No side effects.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*user.User, *errs.CustomError) {
	if credential == "" {
		return nil, errs.NewError(errs.ErrUnauthenticated)
	}

	payload, err := jwt.ParseToken(credential, r.secret)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnauthenticated)
	}

	u, err := r.users.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	if !u.IsActive() {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	return u, nil
}
