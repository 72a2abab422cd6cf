package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// SessionManager opens the single warehouse connection a command works on.
//
// SessionManager is safe for concurrent use as long as the injected
// connector and logger are.
type SessionManager struct {
	connector dwh.Connector
	logger    dwh.Logger
}

// NewSessionManager creates a SessionManager.
//
// Panics if any dependency is nil. Panics indicate programmer error
// (incorrect dependency injection setup).
func NewSessionManager(connector dwh.Connector, logger dwh.Logger) *SessionManager {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SessionManager{connector: connector, logger: logger}
}

// Open connects and points search_path at schema. The caller must Close the
// returned connection.
func (sm *SessionManager) Open(ctx context.Context, schema string) (dwh.Connection, error) {
	conn, err := sm.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if schema == "" {
		schema = dwh.DefaultSchema
	}
	stmt := fmt.Sprintf("SET search_path TO %s", db.QuoteIdent(schema))
	sm.logger.Verbose("%s", stmt)
	if _, err := conn.Exec(ctx, stmt); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("session preparation failed: %w", db.ClassifyError(err))
	}
	return conn, nil
}
