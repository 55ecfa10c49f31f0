package testdb

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	sharedContainer *PostgresContainer
	sharedOnce      sync.Once
	sharedMu        sync.Mutex
)

// PostgresContainer wraps the postgres testcontainer
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres starts one PostgreSQL container reused by every test
// of the package until Cleanup is called.
//
// Tests using the shared container cannot run in parallel.
//
// Usage:
//
//	func TestMyRepository(t *testing.T) {
//	    pgContainer := testdb.SetupSharedPostgres(t)
//	    defer pgContainer.Cleanup(t)
//
//	    pgContainer.RunMigrations(t, registration.Migrate)
//
//	    t.Run("Test1", func(t *testing.T) {
//	        testdb.CleanupTables(t, pgContainer.DB, "registrations")
//	        // ... test
//	    })
//	}
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		require.NoError(t, err)

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
		db := bun.NewDB(sqldb, pgdialect.New())

		err = db.Ping()
		require.NoError(t, err)

		sharedContainer = &PostgresContainer{
			Container: pgContainer,
			DB:        db,
			DSN:       connStr,
		}
	})

	return sharedContainer
}

// Cleanup terminates the container. The next SetupSharedPostgres call
// starts a new one.
func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if pc.DB != nil {
		pc.DB.Close()
	}

	if pc.Container != nil {
		if err := pc.Container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	sharedContainer = nil
	sharedOnce = sync.Once{}
}

// RunMigrations applies a package migration function to the container.
func (pc *PostgresContainer) RunMigrations(t *testing.T, migrate func(ctx context.Context, db *bun.DB) error) {
	t.Helper()

	err := migrate(context.Background(), pc.DB)
	require.NoError(t, err, "failed to run migrations")
}

func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}
