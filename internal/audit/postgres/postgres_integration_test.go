//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taxwise/taxwise-server/internal/audit"
	"github.com/taxwise/taxwise-server/internal/audit/audittest"
)

// startPostgres returns a DSN from TAXWISE_POSTGRES_DSN or a throwaway container.
func startPostgres(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TAXWISE_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "taxwise",
			"POSTGRES_PASSWORD": "taxwise",
			"POSTGRES_DB":       "taxwise",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://taxwise:taxwise@%s:%s/taxwise?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Compliance(t *testing.T) {
	dsn := startPostgres(t)
	audittest.Run(t, func(t *testing.T) audit.Store {
		db, err := Open(dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		s := NewWithDB(db)
		ctx := context.Background()
		require.NoError(t, s.EnsureSchema(ctx))
		_, err = db.ExecContext(ctx, `TRUNCATE audit_logs`)
		require.NoError(t, err)
		require.NoError(t, s.HealthPing(ctx))
		return s
	})
}
