package e2e_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// sharedPostgres is one PostgreSQL container reused by every e2e test in the run.
var sharedPostgres struct {
	once      sync.Once
	dsn       string
	err       error
	container *pgcontainer.PostgresContainer
}

// terminatePostgres stops the shared container, if one was started.
func terminatePostgres() {
	if sharedPostgres.container == nil {
		return
	}
	if err := testcontainers.TerminateContainer(sharedPostgres.container); err != nil {
		fmt.Fprintf(os.Stderr, "terminate postgres container: %s\n", err)
	}
}

func startPostgres(ctx context.Context) (string, error) {
	c, err := pgcontainer.Run(ctx,
		"postgres:18-alpine",
		pgcontainer.WithDatabase("b2emu"),
		pgcontainer.WithUsername("b2emu"),
		pgcontainer.WithPassword("b2emu"),
		pgcontainer.BasicWaitStrategies(),
	)
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}
	sharedPostgres.container = c

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", fmt.Errorf("connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err = pool.Ping(ctx); err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}
	return dsn, nil
}

// getSharedPostgresDatabase returns the DSN of the shared PostgreSQL container,
// starting it on first use.
func getSharedPostgresDatabase(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres e2e test in short mode")
	}

	sharedPostgres.once.Do(func() {
		sharedPostgres.dsn, sharedPostgres.err = startPostgres(context.Background())
	})
	if sharedPostgres.err != nil {
		t.Fatalf("postgres unavailable: %v", sharedPostgres.err)
	}
	return sharedPostgres.dsn
}
