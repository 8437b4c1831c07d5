package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/designerhub/data"
	"github.com/localnerve/designerhub/internal/config"
	"github.com/localnerve/designerhub/internal/database"
	"github.com/localnerve/designerhub/internal/handlers"
	"github.com/localnerve/designerhub/internal/mail"
	"github.com/localnerve/designerhub/internal/middleware"
	"github.com/localnerve/designerhub/internal/ratelimit"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/session"
	"github.com/localnerve/designerhub/internal/storage"
	"github.com/localnerve/designerhub/internal/utils"
	"github.com/redis/go-redis/v9"

	_ "github.com/localnerve/designerhub/docs/api" // Swagger docs
)

//go:generate swag init -g cmd/server/main.go -o docs/api -d ../../

// @title DesignerHub API
// @version 1.0.0
// @description Design portfolio backend: accounts, works, favorites, likes, profiles, reviews and chats
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/designerhub
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		fatal("failed to run migrations", err)
	}
	categories, err := data.Categories()
	if err != nil {
		fatal("failed to read default categories", err)
	}
	if added, err := database.SeedCategories(db, categories); err != nil {
		fatal("failed to seed categories", err)
	} else if added > 0 {
		slog.Info("seeded categories", "count", added)
	}

	ctx := context.Background()
	components := services.ConfiguredComponents(cfg)

	// Redis backs token revocation and auth rate limiting
	var (
		revoker     session.AccountRevoker
		authLimiter middleware.Limiter
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		revoker = session.NewRedisRevoker(rdb, "designerhub:revoked")
		if cfg.RateLimitAuth > 0 {
			limiter, err := ratelimit.NewFixedWindowLimiter(rdb, "designerhub:ratelimit", cfg.RateLimitAuth, time.Minute)
			if err != nil {
				fatal("failed to build rate limiter", err)
			}
			authLimiter = limiter
		}
		components["redis"] = services.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		slog.Warn("REDIS_ADDR not set, token revocation and auth rate limiting are disabled")
	}

	var media storage.MediaStore
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			fatal("failed to connect to object storage", err)
		}
		media = store
		components["object_storage"] = store
	} else {
		slog.Warn("MINIO_ENDPOINT not set, media uploads are disabled")
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	svc := handlers.Services{
		Auth:        services.NewAuthService(db, cfg, mailer, revoker),
		Catalog:     services.NewCatalogService(db, media),
		Engagement:  services.NewEngagementService(db),
		Profiles:    services.NewProfileService(db),
		Messaging:   services.NewMessagingService(db),
		Reviews:     services.NewReviewService(db),
		Health:      &handlers.HealthHandler{Config: cfg, DB: db, Components: components},
		AuthLimiter: authLimiter,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    32 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("designerhub")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	handlers.RegisterRoutes(api, svc)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		slog.Info("gracefully shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		fatal("failed to start server", err)
	}

	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
