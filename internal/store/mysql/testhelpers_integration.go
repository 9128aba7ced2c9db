//go:build integration

package mysql

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"go.uber.org/zap"
	"realty_notify/internal/db"
)

// setupStore starts MySQL, loads db/schema.sql and returns a store bound to
// it. The cleanup closes the pool and stops the container.
func setupStore(t require.TestingT, ctx context.Context) (*Store, func()) {
	const (
		dbName = "realty_notify_test"
		user   = "broker_admin"
		pass   = "testpass"
	)

	container, err := mysql.RunContainer(
		ctx,
		mysql.WithDatabase(dbName),
		mysql.WithUsername(user),
		mysql.WithPassword(pass),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("3306/tcp"))
	require.NoError(t, err)

	dsn := user + ":" + pass + "@tcp(" + host + ":" + port.Port() + ")/" + dbName + "?parseTime=true&loc=UTC&multiStatements=true"

	pool, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	pool.SetConnMaxLifetime(time.Minute)
	require.NoError(t, pool.PingContext(ctx))

	schemaPath := filepath.Join("..", "..", "..", "db", "schema.sql")
	schema, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	_, err = pool.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	cleanup := func() {
		_ = pool.Close()
		_ = container.Terminate(ctx)
	}
	return New(db.New(pool), zap.NewNop()), cleanup
}
