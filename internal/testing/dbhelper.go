package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/internal/testinfra"
)

// TestConnEnvVar overrides the auto-started container with an existing server.
const TestConnEnvVar = "DWH_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: DWH_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// ConnectWithSchema opens a connection to the test database inside a fresh
// schema that is dropped when the test completes. It returns the connection
// and the schema name; search_path points at the schema.
func ConnectWithSchema(t *testing.T) (*pgx.Conn, string) {
	t.Helper()

	connString := RequireDatabase(t)
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	schema := "dwhetl_test_" + uuid.NewString()[:8]
	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", db.QuoteIdent(schema))); err != nil {
		conn.Close(ctx) //nolint:errcheck
		t.Fatalf("Failed to create test schema %s: %v", schema, err)
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", db.QuoteIdent(schema))); err != nil {
		conn.Close(ctx) //nolint:errcheck
		t.Fatalf("Failed to set search_path: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		if _, err := conn.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", db.QuoteIdent(schema))); err != nil {
			t.Logf("Warning: Failed to drop schema %s: %v", schema, err)
		}
		conn.Close(ctx) //nolint:errcheck
	})

	return conn, schema
}

// ForceApprover is a test approver that approves every request.
type ForceApprover struct{}

// RequestApproval always returns true.
func (a *ForceApprover) RequestApproval(ctx context.Context, action, target string) (bool, error) {
	return true, nil
}

// DenyApprover is a test approver that rejects every request.
type DenyApprover struct{}

// RequestApproval always returns false.
func (a *DenyApprover) RequestApproval(ctx context.Context, action, target string) (bool, error) {
	return false, nil
}
