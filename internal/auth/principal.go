package auth

import (
	"context"
	"errors"

	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/store"
)

// UserStore is the user lookup auth needs.
type UserStore interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

type ctxKey int

const (
	principalKey ctxKey = iota
	sessionUserKey
)

// ResolvePrincipal maps a token id claim to its user. A missing user yields
// (nil, nil); only data-access failures return an error.
func ResolvePrincipal(ctx context.Context, users UserStore, id string) (*models.User, error) {
	if id == "" {
		return nil, nil
	}
	u, err := users.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// WithPrincipal stores the JWT-authenticated user in ctx.
func WithPrincipal(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

// Principal returns the JWT-authenticated user, or nil.
func Principal(ctx context.Context) *models.User {
	u, _ := ctx.Value(principalKey).(*models.User)
	return u
}

// WithSessionUser stores the cookie-session user in ctx.
func WithSessionUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, sessionUserKey, u)
}

// SessionUser returns the cookie-session user, or nil.
func SessionUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(sessionUserKey).(*models.User)
	return u
}
