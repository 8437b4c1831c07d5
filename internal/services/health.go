package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localnerve/designerhub/internal/config"
	"github.com/localnerve/designerhub/internal/utils"
	"gorm.io/gorm"
)

// Pinger is any dependency the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Components   map[string]string `json:"components,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck pings the database and every optional component that is configured
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, components map[string]Pinger) HealthCheckResult {
	result := HealthCheckResult{
		Status:     "healthy",
		Components: make(map[string]string),
		Details:    make(map[string]string),
	}

	fail := func(name, state string, err error) {
		result.Status = "unhealthy"
		result.Details[name+"_error"] = err.Error()
		msg := fmt.Sprintf("%s %s: %v", name, state, err)
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
		slog.WarnContext(ctx, "health check failed", "component", name, "error", err)
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		fail("database", "connection error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		fail("database", "ping failed", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	for name, pinger := range components {
		if pinger == nil {
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			result.Components[name] = "unreachable"
			fail(name, "ping failed", err)
			continue
		}
		result.Components[name] = "ok"
	}

	if result.Status == "healthy" {
		slog.DebugContext(ctx, "health check passed")
	}
	return result
}

// ConfiguredComponents returns TCP probes for the optional services cfg enables.
// Callers holding live clients may replace an entry with a deeper check.
func ConfiguredComponents(cfg *config.Config) map[string]Pinger {
	components := make(map[string]Pinger)
	if cfg.RedisAddr != "" {
		components["redis"] = PingFunc(func(ctx context.Context) error {
			return utils.PingAddr(ctx, cfg.RedisAddr)
		})
	}
	if cfg.MinioEndpoint != "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		components["object_storage"] = PingFunc(func(ctx context.Context) error {
			return utils.PingService(ctx, scheme+"://"+cfg.MinioEndpoint)
		})
	}
	if cfg.SMTPHost != "" {
		components["smtp"] = PingFunc(func(ctx context.Context) error {
			return utils.PingSMTP(ctx, cfg.SMTPHost, cfg.SMTPPort)
		})
	}
	return components
}
