package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/designerhub/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "db", "", "database to start: mariadb, mysql or postgres (default DB_TYPE or mariadb)")
	var noRedis, noMinio bool
	flag.BoolVar(&noRedis, "no-redis", false, "do not start Redis")
	flag.BoolVar(&noMinio, "no-minio", false, "do not start MinIO")
	flag.Parse()

	usage := `
Run the designerhub backing services (database, Redis, MinIO) in testcontainers.
Prints the environment a local server needs to reach them, then waits for a signal.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db TYPE] [-no-redis] [-no-minio]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env -db postgres
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}
	if dbType == "" {
		dbType = os.Getenv("DB_TYPE")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	started := make(chan *testutil.Containers, 1)
	go func() {
		containers, err := testutil.StartContainers(nil, testutil.ContainerOptions{
			DBType: dbType,
			Redis:  !noRedis,
			Minio:  !noMinio,
		})
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
		started <- containers
	}()

	var containers *testutil.Containers
	select {
	case containers = <-started:
		sig := <-sigs
		log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	case sig := <-sigs:
		log.Printf("\nReceived signal: %v before startup finished\n", sig)
	}
	if containers != nil {
		containers.Terminate(nil)
	}
}
