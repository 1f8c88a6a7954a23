package repository

import (
	"context"

	"trackdechets/internal/model"
)

// UserRepository defines data access for users and their access tokens.
// Tokens are only ever stored and looked up by hash.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error

	// FindByTokenHash returns the owner of an access token, or sql.ErrNoRows.
	FindByTokenHash(ctx context.Context, hash string) (*model.User, error)

	CreateToken(ctx context.Context, userID, hash string) error
}
