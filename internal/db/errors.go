package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// SQLSTATE codes that mean the statement referenced something that is not there.
const (
	codeUndefinedTable  = "42P01"
	codeUndefinedColumn = "42703"
	codeInvalidSchema   = "3F000"
)

// ClassifyError wraps a statement error with the matching sentinel:
// dwh.ErrMissingRelation for undefined tables, columns and schemas,
// dwh.ErrExecutionFailed for everything else. Nil stays nil.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable, codeUndefinedColumn, codeInvalidSchema:
			return fmt.Errorf("%w: %w", dwh.ErrMissingRelation, err)
		}
	}
	return fmt.Errorf("%w: %w", dwh.ErrExecutionFailed, err)
}
