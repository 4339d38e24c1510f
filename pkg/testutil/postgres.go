package testutil

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgpkg "github.com/dkverwaltung/dkledger/pkg/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance. Pool is a
// read-write pool for seeding fixtures.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// StartPostgres starts a PostgreSQL container, applies the migrations in fsys
// and registers teardown with t.Cleanup.
func StartPostgres(ctx context.Context, t *testing.T, migrations fs.FS) *PostgresContainer {
	t.Helper()

	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dkledger"),
		postgres.WithUsername("dkledger"),
		postgres.WithPassword("dkledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	pc := &PostgresContainer{Container: c}
	t.Cleanup(func() { pc.cleanup(t) })

	pc.DSN, err = c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := pgpkg.RunMigrations(pc.DSN, migrations); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pc.Pool, err = pgxpool.New(ctx, pc.DSN)
	if err != nil {
		t.Fatalf("failed to create pgxpool: %v", err)
	}
	return pc
}

// Exec runs fixture SQL against the database.
func (pc *PostgresContainer) Exec(t *testing.T, sql string, args ...any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := pc.Pool.Exec(ctx, sql, args...); err != nil {
		t.Fatalf("failed to execute fixture SQL: %v", err)
	}
}

func (pc *PostgresContainer) cleanup(t *testing.T) {
	if pc.Pool != nil {
		pc.Pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}
