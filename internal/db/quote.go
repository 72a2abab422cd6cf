package db

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// QuoteIdent quotes a single identifier.
func QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QualifiedName quotes schema.table. An empty schema yields just the table.
func QualifiedName(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}

// QuoteLiteral renders s as a single-quoted SQL string literal.
// COPY takes its source, credentials and format as literals, not parameters.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
