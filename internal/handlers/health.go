package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/config"
	"github.com/localnerve/designerhub/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the service and its dependencies
type HealthHandler struct {
	Config     *config.Config
	DB         *gorm.DB
	Components map[string]services.Pinger
}

// Health handles GET /api/health
// @Summary Health check
// @Tags Operations
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	result := services.HealthCheck(ctx, h.Config, h.DB, h.Components)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
