//go:build integration

package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage          = "postgres:16-alpine"
	postgresAlias          = "postgres"
	postgresDatabase       = "mutationq"
	postgresUser           = "mutationq"
	postgresPassword       = "secret"
	postgresStartupTimeout = 2 * time.Minute
)

// PostgresContainer is a PostgreSQL server holding mutationq tables.
// Pool connects from the test process; DSN is the address CLI containers on Network use.
type PostgresContainer struct {
	Container testcontainers.Container
	Network   *testcontainers.DockerNetwork
	Pool      *pgxpool.Pool
	DSN       string
}

func postgresDSN(host, port string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser,
		postgresPassword,
		host,
		port,
		postgresDatabase,
	)
}

// StartPostgresContainer starts PostgreSQL on a fresh network and returns a connected pool.
func StartPostgresContainer(t *testing.T, ctx context.Context) PostgresContainer {
	t.Helper()

	net := NewNetwork(t, ctx)
	port := nat.Port("5432/tcp")
	container := startContainer(t, ctx, "postgres", testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"POSTGRES_DB":       postgresDatabase,
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
		},
		Networks:       []string{net.Name},
		NetworkAliases: map[string][]string{net.Name: {postgresAlias}},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(port),
		).WithDeadline(postgresStartupTimeout),
	})

	host, mapped := hostEndpoint(t, ctx, container, port)
	pool, err := pgxpool.New(ctx, postgresDSN(host, mapped))
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}

	return PostgresContainer{
		Container: container,
		Network:   net,
		Pool:      pool,
		DSN:       postgresDSN(postgresAlias, port.Port()),
	}
}
