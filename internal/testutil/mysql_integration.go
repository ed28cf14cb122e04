//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/go-sql-driver/mysql"
)

const (
	mysqlImage          = "mysql:8.0.36"
	mysqlAlias          = "mysql"
	mysqlDatabase       = "mutationq"
	mysqlPassword       = "secret"
	mysqlStartupTimeout = 2 * time.Minute
)

// MySQLContainer is a MySQL server holding mutationq tables.
// DB connects from the test process; DSN is the address CLI containers on Network use.
type MySQLContainer struct {
	Container testcontainers.Container
	Network   *testcontainers.DockerNetwork
	DB        *sql.DB
	DSN       string
}

func mysqlDSN(host, port string) string {
	return fmt.Sprintf("root:%s@tcp(%s:%s)/%s?parseTime=true", mysqlPassword, host, port, mysqlDatabase)
}

// StartMySQLContainer starts MySQL on a fresh network.
func StartMySQLContainer(t *testing.T, ctx context.Context) MySQLContainer {
	t.Helper()

	net := NewNetwork(t, ctx)
	port := nat.Port("3306/tcp")
	container := startContainer(t, ctx, "mysql", testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      mysqlDatabase,
		},
		Networks:       []string{net.Name},
		NetworkAliases: map[string][]string{net.Name: {mysqlAlias}},
		WaitingFor: wait.ForSQL(port, "mysql", func(host string, port nat.Port) string {
			return mysqlDSN(host, port.Port())
		}).WithStartupTimeout(mysqlStartupTimeout),
	})

	host, mapped := hostEndpoint(t, ctx, container, port)
	db, err := sql.Open("mysql", mysqlDSN(host, mapped))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return MySQLContainer{
		Container: container,
		Network:   net,
		DB:        db,
		DSN:       mysqlDSN(mysqlAlias, port.Port()),
	}
}
