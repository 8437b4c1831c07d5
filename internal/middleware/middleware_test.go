package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/localnerve/designerhub/internal/utils"
)

type stubVerifier map[string]*services.Identity

func (s stubVerifier) VerifyAccess(_ context.Context, token string) (*services.Identity, error) {
	if identity, ok := s[token]; ok {
		return identity, nil
	}
	return nil, types.Auth("auth.token", "Token is invalid or expired")
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) bool { return false }

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(Authenticate(stubVerifier{
		"user-token":  {AccountID: 7},
		"admin-token": {AccountID: 1, IsAdmin: true},
	}))
	app.Get("/open", func(c *fiber.Ctx) error {
		if identity := CurrentIdentity(c); identity != nil {
			return c.SendString("user")
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"anonymous open", "/open", "", fiber.StatusOK},
		{"user open", "/open", "Bearer user-token", fiber.StatusOK},
		{"bad token", "/open", "Bearer nope", fiber.StatusUnauthorized},
		{"wrong scheme", "/open", "Basic abc", fiber.StatusUnauthorized},
		{"anonymous private", "/private", "", fiber.StatusUnauthorized},
		{"user private", "/private", "Bearer user-token", fiber.StatusNoContent},
		{"user admin", "/admin", "Bearer user-token", fiber.StatusForbidden},
		{"admin admin", "/admin", "bearer admin-token", fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Post("/limited", RateLimit(denyAll{}), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/unlimited", RateLimit(nil), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("POST", "/limited", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("POST", "/unlimited", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(c.Locals("apiVersion").(string)) })

	for header, status := range map[string]int{"": 200, "1.0": 200, "1.0.0": 200, "2.0.0": 400} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("X-Api-Version", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != status {
			t.Errorf("version %q: expected status %d, got %d", header, status, resp.StatusCode)
		}
	}
}
