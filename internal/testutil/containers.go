// Containers for integration tests and the standalone testcontainers command.
// Settings come from the environment, usually loaded from a .env file.

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Containers holds the backing services started for a test run
type Containers struct {
	Network        *testcontainers.DockerNetwork
	DBContainer    testcontainers.Container
	RedisContainer testcontainers.Container
	MinioContainer testcontainers.Container

	// Env carries the settings a server or test needs to reach the containers from the host
	Env map[string]string
}

// ContainerOptions selects which services to start
type ContainerOptions struct {
	DBType string // mariadb, mysql or postgres
	Redis  bool
	Minio  bool
}

// Terminate stops every started container and removes the network
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]testcontainers.Container{
		"MinIO":    tc.MinioContainer,
		"Redis":    tc.RedisContainer,
		"Database": tc.DBContainer,
	} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", name, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartContainers starts the database and the optional services in opts.
// With a nil t, failures print and exit the process.
func StartContainers(t *testing.T, opts ContainerOptions) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{Env: map[string]string{}}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, exitWithError(t, err, "Failed to create network")
	}
	tc.Network = nw

	if err := tc.startDatabase(ctx, opts.DBType); err != nil {
		tc.Terminate(t)
		return nil, exitWithError(t, err, "Failed to start Database")
	}
	if opts.Redis {
		if err := tc.startRedis(ctx); err != nil {
			tc.Terminate(t)
			return nil, exitWithError(t, err, "Failed to start Redis")
		}
	}
	if opts.Minio {
		if err := tc.startMinio(ctx); err != nil {
			tc.Terminate(t)
			return nil, exitWithError(t, err, "Failed to start MinIO")
		}
	}

	for key, value := range tc.Env {
		logMessage(t, "%s=%s", key, value)
	}
	logMessage(t, "DesignerHub testcontainers started successfully")
	return tc, nil
}

func (tc *Containers) startDatabase(ctx context.Context, dbType string) error {
	database := getEnv("DB_DATABASE", "designerhub")
	user := getEnv("DB_USER", "designerhub")
	password := getEnv("DB_PASSWORD", "designerhub")

	var (
		image string
		port  nat.Port
		env   map[string]string
	)
	switch dbType {
	case "postgres":
		image = getEnv("DB_IMAGE", "postgres:17-alpine")
		port = "5432/tcp"
		env = map[string]string{
			"POSTGRES_DB":       database,
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
		}
	case "mariadb", "mysql", "":
		dbType = "mariadb"
		image = getEnv("DB_IMAGE", "mariadb:11")
		port = "3306/tcp"
		env = map[string]string{
			"MARIADB_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", "root"),
			"MARIADB_DATABASE":      database,
			"MARIADB_USER":          user,
			"MARIADB_PASSWORD":      password,
		}
	default:
		return fmt.Errorf("no container image for DB_TYPE %q", dbType)
	}

	container, err := tc.start(ctx, image, port, env, nil, wait.ForListeningPort(port).WithStartupTimeout(90*time.Second), "db")
	if err != nil {
		return err
	}
	tc.DBContainer = container

	host, mapped, err := endpoint(ctx, container, port)
	if err != nil {
		return err
	}
	tc.Env["DB_TYPE"] = dbType
	tc.Env["DB_HOST"] = host
	tc.Env["DB_PORT"] = mapped.Port()
	tc.Env["DB_DATABASE"] = database
	tc.Env["DB_USER"] = user
	tc.Env["DB_PASSWORD"] = password
	return nil
}

func (tc *Containers) startRedis(ctx context.Context) error {
	port := nat.Port("6379/tcp")
	container, err := tc.start(ctx, getEnv("REDIS_IMAGE", "redis:7-alpine"), port, nil, nil,
		wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second), "redis")
	if err != nil {
		return err
	}
	tc.RedisContainer = container

	host, mapped, err := endpoint(ctx, container, port)
	if err != nil {
		return err
	}
	tc.Env["REDIS_ADDR"] = host + ":" + mapped.Port()
	return nil
}

func (tc *Containers) startMinio(ctx context.Context) error {
	port := nat.Port("9000/tcp")
	accessKey := getEnv("MINIO_ACCESS_KEY", "designerhub")
	secretKey := getEnv("MINIO_SECRET_KEY", "designerhub-secret")

	container, err := tc.start(ctx, getEnv("MINIO_IMAGE", "minio/minio:latest"), port,
		map[string]string{
			"MINIO_ROOT_USER":     accessKey,
			"MINIO_ROOT_PASSWORD": secretKey,
		},
		[]string{"server", "/data"},
		wait.ForHTTP("/minio/health/live").WithPort(port).WithStartupTimeout(60*time.Second), "minio")
	if err != nil {
		return err
	}
	tc.MinioContainer = container

	host, mapped, err := endpoint(ctx, container, port)
	if err != nil {
		return err
	}
	tc.Env["MINIO_ENDPOINT"] = host + ":" + mapped.Port()
	tc.Env["MINIO_ACCESS_KEY"] = accessKey
	tc.Env["MINIO_SECRET_KEY"] = secretKey
	return nil
}

func (tc *Containers) start(ctx context.Context, image string, port nat.Port, env map[string]string, cmd []string, waitFor wait.Strategy, alias string) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(port)},
			Env:          env,
			Cmd:          cmd,
			WaitingFor:   waitFor,
			Networks:     []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {alias},
			},
		},
		Started: true,
	})
}

func endpoint(ctx context.Context, container testcontainers.Container, port nat.Port) (string, nat.Port, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", "", fmt.Errorf("container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return "", "", fmt.Errorf("mapped port %s: %w", port, err)
	}
	return host, mapped, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) error {
	if t != nil {
		t.Fatalf(msg+": %v", err)
		return err
	}
	fmt.Printf(msg+": %v\n", err)
	os.Exit(1)
	return err
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
