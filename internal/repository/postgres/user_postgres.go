package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"trackdechets/internal/model"
	"trackdechets/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a user, generating its id and creation date when unset.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO users (id, email, name, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.CreatedAt)
	return err
}

// FindByTokenHash returns the owner of the token with the given hash.
func (r *UserPostgres) FindByTokenHash(ctx context.Context, hash string) (*model.User, error) {
	const q = `
		SELECT u.id, u.email, u.name, u.created_at
		FROM users u
		JOIN access_tokens t ON t.user_id = u.id
		WHERE t.token_hash = $1
	`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, hash).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateToken stores the hash of a new access token for userID.
func (r *UserPostgres) CreateToken(ctx context.Context, userID, hash string) error {
	const q = `INSERT INTO access_tokens (token_hash, user_id, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, hash, userID, time.Now().UTC())
	return err
}
