package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/types"
)

// Limiter admits or rejects one request for a key
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit throttles requests per client IP and route. A nil limiter disables it.
func RateLimit(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		if !limiter.Allow(c.UserContext(), c.Path()+"|"+c.IP()) {
			return &types.CustomError{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many requests, try again later",
				Type:    "ratelimit",
			}
		}
		return c.Next()
	}
}
