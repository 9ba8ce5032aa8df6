package helper

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName     = "database"
	testDatabaseUser     = "user"
	testDatabasePassword = "password"
	testNeo4jPassword    = "password"
)

// MustStartPostgresContainer starts a pgvector enabled PostgreSQL container.
// It returns the teardown function and the mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("get mapped port", err)
	}

	return container.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs sets the database environment variables for a test container
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("DATABASE_HOST", "localhost")
	t.Setenv("DATABASE_PORT", port)
	t.Setenv("DATABASE_NAME", testDatabaseName)
	t.Setenv("DATABASE_USERNAME", testDatabaseUser)
	t.Setenv("DATABASE_PASSWORD", testDatabasePassword)
	t.Setenv("DATABASE_SCHEMA", "public")
	t.Setenv("DATABASE_SSL_MODE", "disable")
}

// MustStartNeo4jContainer starts a Neo4j container.
// It returns the teardown function, the bolt url and the admin password.
func MustStartNeo4jContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, string, error) {
	ctx := context.Background()

	container, err := tcneo4j.Run(
		ctx,
		"neo4j:5",
		tcneo4j.WithAdminPassword(testNeo4jPassword),
	)
	if err != nil {
		return nil, "", "", NewError("start neo4j container", err)
	}

	boltURL, err := container.BoltUrl(ctx)
	if err != nil {
		return container.Terminate, "", "", NewError("get bolt url", err)
	}

	return container.Terminate, boltURL, testNeo4jPassword, nil
}
