package manager

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

const queryColumns = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

// Manager implements catalog and DDL operations within one schema.
type Manager struct {
	schema string
}

// New creates a Manager for schema. Empty means dwh.DefaultSchema.
func New(schema string) *Manager {
	if schema == "" {
		schema = dwh.DefaultSchema
	}
	return &Manager{schema: schema}
}

// Schema returns the schema the manager operates on.
func (m *Manager) Schema() string {
	return m.schema
}

// Qualified returns the quoted schema-qualified name of table.
func (m *Manager) Qualified(table string) string {
	return db.QualifiedName(m.schema, table)
}

// Columns returns the column names of table in ordinal order.
// A table with no visible columns does not exist and yields dwh.ErrMissingRelation.
func (m *Manager) Columns(ctx context.Context, conn dwh.DBConnection, table string) ([]string, error) {
	rows, err := conn.Query(ctx, queryColumns, m.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s.%s: %w", m.schema, table, db.ClassifyError(err))
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s.%s: %w", m.schema, table, db.ClassifyError(err))
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s.%s: %w", m.schema, table, db.ClassifyError(err))
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("relation %s.%s does not exist: %w", m.schema, table, dwh.ErrMissingRelation)
	}
	return columns, nil
}

// RequireColumn verifies that table exists and has column. It returns the
// table's columns in ordinal order.
func (m *Manager) RequireColumn(ctx context.Context, conn dwh.DBConnection, table, column string) ([]string, error) {
	columns, err := m.Columns(ctx, conn, table)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(columns, column) {
		return nil, fmt.Errorf("column %q of relation %s.%s does not exist: %w", column, m.schema, table, dwh.ErrMissingRelation)
	}
	return columns, nil
}
