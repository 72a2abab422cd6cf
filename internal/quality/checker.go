package quality

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/internal/db/manager"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// rankColumn is the window-function alias used while picking representatives.
const rankColumn = "dwhetl_rank"

// tempTable holds the representatives of one check. It lives only inside the
// dedup transaction of a single session, so one name serves every table.
const tempTable = "dwhetl_dedup"

// Checker deduplicates analytics tables by primary key.
type Checker struct {
	conn    dwh.DBConnection
	catalog *manager.Manager
	logger  dwh.Logger
}

// NewChecker creates a Checker. Panics if any dependency is nil.
func NewChecker(conn dwh.DBConnection, catalog *manager.Manager, logger dwh.Logger) *Checker {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Checker{conn: conn, catalog: catalog, logger: logger}
}

var _ dwh.QualityChecker = (*Checker)(nil)

// Check counts the rows of table, removes every row with a duplicated
// primary key except one representative per key, and counts again.
//
// The representative is the row that sorts first by all columns in declared
// order. Rows with a NULL key are never touched. A second Check on the same
// table finds no duplicates and changes nothing.
func (c *Checker) Check(ctx context.Context, table, primaryKey string) (dwh.QualityReport, error) {
	report := dwh.QualityReport{Table: table, PrimaryKey: primaryKey}

	columns, err := c.catalog.RequireColumn(ctx, c.conn, table, primaryKey)
	if err != nil {
		return report, err
	}

	q := dedupQueries(c.catalog.Qualified(table), primaryKey, columns)

	if report.Before, err = c.count(ctx, q.count); err != nil {
		return report, fmt.Errorf("failed to count %s: %w", table, err)
	}
	c.logger.Info("There are %d rows in the %s table", report.Before, table)

	if report.DuplicateKeys, err = c.count(ctx, q.duplicateKeys); err != nil {
		return report, fmt.Errorf("failed to count duplicate keys in %s: %w", table, err)
	}

	var removed int64
	if report.DuplicateKeys > 0 {
		c.logger.Verbose("%d duplicated %s values in %s", report.DuplicateKeys, primaryKey, table)
		if removed, err = c.dedup(ctx, q); err != nil {
			return report, fmt.Errorf("failed to remove duplicates from %s: %w", table, err)
		}
	}

	if report.After, err = c.count(ctx, q.count); err != nil {
		return report, fmt.Errorf("failed to count %s: %w", table, err)
	}
	report.Removed = report.Before - report.After
	c.logger.Info("There are %d rows in the %s table after removing duplicates", report.After, table)

	if removed != report.Removed {
		return report, fmt.Errorf("%s: removed %d rows but the row count dropped by %d: %w",
			table, removed, report.Removed, dwh.ErrCountMismatch)
	}
	return report, nil
}

func (c *Checker) count(ctx context.Context, sql string) (int64, error) {
	var n int64
	if err := c.conn.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, db.ClassifyError(err)
	}
	return n, nil
}

// dedup replaces every group of rows sharing a key with its representative,
// inside one transaction. It returns the net number of rows removed.
func (c *Checker) dedup(ctx context.Context, q queries) (int64, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return 0, db.ClassifyError(err)
	}

	removed, err := c.dedupTx(ctx, tx, q)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			c.logger.Verbose("rollback failed: %v", rbErr)
		}
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, db.ClassifyError(err)
	}
	return removed, nil
}

func (c *Checker) dedupTx(ctx context.Context, tx pgx.Tx, q queries) (int64, error) {
	c.logger.Verbose("%s", q.createRepresentatives)
	if _, err := tx.Exec(ctx, q.createRepresentatives); err != nil {
		return 0, db.ClassifyError(err)
	}

	c.logger.Verbose("%s", q.deleteDuplicates)
	deleted, err := tx.Exec(ctx, q.deleteDuplicates)
	if err != nil {
		return 0, db.ClassifyError(err)
	}

	c.logger.Verbose("%s", q.insertRepresentatives)
	inserted, err := tx.Exec(ctx, q.insertRepresentatives)
	if err != nil {
		return 0, db.ClassifyError(err)
	}

	c.logger.Verbose("%s", q.dropRepresentatives)
	if _, err := tx.Exec(ctx, q.dropRepresentatives); err != nil {
		return 0, db.ClassifyError(err)
	}

	return deleted.RowsAffected() - inserted.RowsAffected(), nil
}

type queries struct {
	count                 string
	duplicateKeys         string
	createRepresentatives string
	deleteDuplicates      string
	insertRepresentatives string
	dropRepresentatives   string
}

func dedupQueries(qualified, primaryKey string, columns []string) queries {
	pk := db.QuoteIdent(primaryKey)
	temp := db.QuoteIdent(tempTable)
	colList := strings.Join(lo.Map(columns, func(c string, _ int) string { return db.QuoteIdent(c) }), ", ")

	duplicated := fmt.Sprintf("SELECT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL GROUP BY %[1]s HAVING COUNT(*) > 1", pk, qualified)

	return queries{
		count:         fmt.Sprintf("SELECT COUNT(*) FROM %s", qualified),
		duplicateKeys: fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS duplicated", duplicated),
		createRepresentatives: fmt.Sprintf(`CREATE TEMP TABLE %[1]s AS
SELECT %[2]s FROM (
	SELECT %[2]s, ROW_NUMBER() OVER (PARTITION BY %[3]s ORDER BY %[2]s) AS %[4]s
	FROM %[5]s
	WHERE %[3]s IN (%[6]s)
) AS ranked
WHERE %[4]s = 1`, temp, colList, pk, rankColumn, qualified, duplicated),
		deleteDuplicates:      fmt.Sprintf("DELETE FROM %[1]s WHERE %[2]s IN (SELECT %[2]s FROM %[3]s)", qualified, pk, temp),
		insertRepresentatives: fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", qualified, colList, colList, temp),
		dropRepresentatives:   fmt.Sprintf("DROP TABLE %s", temp),
	}
}
