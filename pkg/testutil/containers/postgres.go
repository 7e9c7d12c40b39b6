//go:build integration

package containers

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"tome/db"
)

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// migrated. AdminDSN connects as the superuser; AppDSN connects as the
// tome_app role, which row security actually applies to.
type PostgresContainer struct {
	Container testcontainers.Container
	AdminDSN  string
	AppDSN    string
}

// NewPostgresContainer starts a Postgres container and runs all migrations
// against it.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tome_test"),
		tcpostgres.WithUsername("tome_admin"),
		tcpostgres.WithPassword("tome_admin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	adminDSN, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := db.Migrate(adminDSN, slog.Default()); err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate test database: %v", err)
	}

	appDSN, err := asAppRole(adminDSN)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to derive app-role DSN: %v", err)
	}

	// No t.Cleanup: containers are shared across suites and Ryuk reaps them.

	return &PostgresContainer{
		Container: container,
		AdminDSN:  adminDSN,
		AppDSN:    appDSN,
	}
}

// asAppRole rewrites the admin DSN to log in as the tome_app role created by
// the row-security migration.
func asAppRole(adminDSN string) (string, error) {
	u, err := url.Parse(adminDSN)
	if err != nil {
		return "", fmt.Errorf("parse admin dsn: %w", err)
	}
	u.User = url.UserPassword("tome_app", "tome_app")
	return u.String(), nil
}
