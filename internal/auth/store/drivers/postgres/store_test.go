package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/storetest"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "auth"
	pgPassword = "auth"
)

// startPostgres runs a throwaway Postgres and returns a DSN template with a
// %s placeholder for the database name.
func startPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres driver tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%%s?sslmode=disable", pgUser, pgPassword, host, port.Port())
}

// databaseFactory creates a fresh database per call so every subtest starts
// from an empty schema.
func databaseFactory(dsn string) storetest.Factory {
	var seq atomic.Int64

	return func(t *testing.T) store.Store {
		t.Helper()
		ctx := context.Background()

		admin, err := pgx.Connect(ctx, fmt.Sprintf(dsn, "postgres"))
		require.NoError(t, err)
		defer admin.Close(ctx)

		name := fmt.Sprintf("auth_%d", seq.Add(1))
		_, err = admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
		require.NoError(t, err)

		st, err := postgres.NewStore(ctx, fmt.Sprintf(dsn, name))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		require.NoError(t, st.ApplyMigrations())
		return st
	}
}

func TestPostgresStore(t *testing.T) {
	storetest.Run(t, databaseFactory(startPostgres(t)))
}

func TestPostgresStore_BadDSN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := postgres.NewStore(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "postgres:"))
}
