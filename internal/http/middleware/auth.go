package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"trackdechets/internal/model"
	"trackdechets/internal/service"
)

// UserIDLocalKey is the key of the authenticated user id in Fiber's context locals.
const UserIDLocalKey = "user_id"

// Authenticator resolves an access token to its owner.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Auth reads a "Bearer <token>" Authorization header and attaches the user to the
// request context (see service.UserFrom). Anonymous requests pass through; each
// operation decides whether it needs a user. An invalid token is rejected.
func Auth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return c.Next()
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return service.ErrUnauthenticated
		}

		user, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.SetUserContext(service.WithUser(c.UserContext(), user))
		c.Locals(UserIDLocalKey, user.ID)
		return c.Next()
	}
}
