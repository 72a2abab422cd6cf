package dwh

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection is the subset of a pgx connection the pipeline uses.
// *pgx.Conn satisfies it directly, as do pgx.Tx and pgxmock connections.
//
// Thread-Safety: NOT safe for concurrent use; the pipeline issues one
// statement at a time on a single connection.
type DBConnection interface {
	// Exec executes a statement without returning rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes a query expected to return at most one row.
	// Errors are deferred until Scan is called.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// Begin starts a transaction scoped to a single logical operation.
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connection is a DBConnection owned by the caller, who must Close it.
type Connection interface {
	DBConnection

	// Close terminates the connection.
	Close(ctx context.Context) error
}

// Connector establishes the single warehouse connection used by a run.
type Connector interface {
	// Connect opens a connection. The caller must Close it when done.
	Connect(ctx context.Context) (Connection, error)
}
