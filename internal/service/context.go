package service

import (
	"context"

	"trackdechets/internal/model"
)

type userKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user of ctx.
func UserFrom(ctx context.Context) (*model.User, error) {
	u, ok := ctx.Value(userKey{}).(*model.User)
	if !ok || u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}
