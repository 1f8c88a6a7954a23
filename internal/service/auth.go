package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/zeebo/blake3"

	"trackdechets/internal/model"
	"trackdechets/internal/repository"
)

// AuthService resolves access tokens to users.
type AuthService interface {
	// Authenticate returns the owner of token, or ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*model.User, error)

	// CreateUser registers a user and returns a fresh access token for it.
	CreateUser(ctx context.Context, email, name string) (*model.User, string, error)
}

type authService struct {
	users repository.UserRepository
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

// HashToken returns the stored form of an access token.
func HashToken(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.FindByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return u, nil
}

func (s *authService) CreateUser(ctx context.Context, email, name string) (*model.User, string, error) {
	u := &model.User{Email: strings.ToLower(strings.TrimSpace(email)), Name: strings.TrimSpace(name)}
	if err := ozzo.ValidateStruct(u,
		ozzo.Field(&u.Email, ozzo.Required, is.EmailFormat),
	); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := s.users.CreateToken(ctx, u.ID, HashToken(token)); err != nil {
		return nil, "", fmt.Errorf("store token: %w", err)
	}
	return u, token, nil
}
