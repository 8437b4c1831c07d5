package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
)

// IdentityKey is the fiber.Ctx Locals key holding the caller's *services.Identity
const IdentityKey = "identity"

// TokenVerifier turns an access token into an identity
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, accessToken string) (*services.Identity, error)
}

// Authenticate resolves an optional Bearer token into the request identity.
// Requests without a token pass through anonymously; a bad token is rejected.
func Authenticate(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return types.Auth("auth.token", "Authorization header must be a Bearer token")
		}

		identity, err := verifier.VerifyAccess(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentIdentity(c) == nil {
			return types.Auth("auth.required", "Authentication credentials were not provided")
		}
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := CurrentIdentity(c)
		if identity == nil {
			return types.Auth("auth.required", "Authentication credentials were not provided")
		}
		if !identity.IsAdmin {
			return types.Forbidden("auth.authorization.admin", "Administrator role required")
		}
		return c.Next()
	}
}

// CurrentIdentity returns the authenticated caller, or nil
func CurrentIdentity(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals(IdentityKey).(*services.Identity)
	return identity
}
