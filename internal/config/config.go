package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port     string
	LogLevel slog.Level

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlite-nocgo, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogSQL          bool

	// Token configuration
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	PasswordResetTTL time.Duration
	PasswordResetURL string

	// Redis backs token revocation and auth rate limiting; both are off when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RateLimitAuth int

	// Object storage for work media; uploads are disabled when MinioEndpoint is empty
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Outgoing mail; messages are logged instead of sent when SMTPHost is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables.
// A .env file in the working directory, or the one named by ENV_FILE, is applied first
// without overriding variables that are already set.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8000"),
		LogLevel:          getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		DBType:            getEnv("DB_TYPE", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		DBLogSQL:          getEnvAsBool("DB_LOG_SQL", false),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AccessTokenTTL:    getEnvAsDuration("JWT_ACCESS_TTL", 5*time.Minute),
		RefreshTokenTTL:   getEnvAsDuration("JWT_REFRESH_TTL", 24*time.Hour),
		PasswordResetTTL:  getEnvAsDuration("PASSWORD_RESET_TTL", 24*time.Hour),
		PasswordResetURL:  getEnv("PASSWORD_RESET_URL", "http://127.0.0.1:8000/password-reset-confirm/"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RateLimitAuth:     getEnvAsInt("RATE_LIMIT_AUTH", 20),
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:       getEnv("MINIO_BUCKET", "designerhub-media"),
		MinioUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:          getEnv("SMTP_FROM", "from@example.com"),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if !isSQLiteType(cfg.DBType) && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required for %s", cfg.DBType)
	}
	if cfg.PasswordResetTTL <= 0 {
		return nil, fmt.Errorf("PASSWORD_RESET_TTL must be positive")
	}

	return cfg, nil
}

func isSQLiteType(dbType string) bool {
	return dbType == "sqlite" || dbType == "sqlite-nocgo"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(valueStr)); err != nil {
		return defaultValue
	}
	return level
}
