package quality

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/internal/db/manager"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// Reconciler compares distinct key sets. It only reads.
type Reconciler struct {
	conn    dwh.DBConnection
	catalog *manager.Manager
	logger  dwh.Logger
}

// NewReconciler creates a Reconciler. Panics if any dependency is nil.
func NewReconciler(conn dwh.DBConnection, catalog *manager.Manager, logger dwh.Logger) *Reconciler {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Reconciler{conn: conn, catalog: catalog, logger: logger}
}

var _ dwh.Reconciler = (*Reconciler)(nil)

// Reconcile reads the distinct non-NULL values of left and right and reports
// their sizes and differences. Values are compared by their text form.
func (r *Reconciler) Reconcile(ctx context.Context, left, right dwh.KeyRef) (dwh.KeySetDiff, error) {
	diff := dwh.KeySetDiff{Left: left, Right: right}

	leftKeys, err := r.keys(ctx, left)
	if err != nil {
		return diff, err
	}
	rightKeys, err := r.keys(ctx, right)
	if err != nil {
		return diff, err
	}

	diff.LeftCount = len(leftKeys)
	diff.RightCount = len(rightKeys)
	diff.OnlyInLeft, diff.OnlyInRight = lo.Difference(leftKeys, rightKeys)
	slices.SortFunc(diff.OnlyInLeft, compareKeys)
	slices.SortFunc(diff.OnlyInRight, compareKeys)

	r.logger.Info("%d unique %s values in %s table", diff.LeftCount, left.Column, left.Table)
	r.logger.Info("%d unique %s values in %s table", diff.RightCount, right.Column, right.Table)
	return diff, nil
}

func (r *Reconciler) keys(ctx context.Context, ref dwh.KeyRef) ([]string, error) {
	if _, err := r.catalog.RequireColumn(ctx, r.conn, ref.Table, ref.Column); err != nil {
		return nil, err
	}

	col := db.QuoteIdent(ref.Column)
	sql := fmt.Sprintf("SELECT DISTINCT CAST(%[1]s AS VARCHAR) FROM %[2]s WHERE %[1]s IS NOT NULL", col, r.catalog.Qualified(ref.Table))
	r.logger.Verbose("%s", sql)

	rows, err := r.conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to read keys of %s: %w", ref, db.ClassifyError(err))
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to read keys of %s: %w", ref, db.ClassifyError(err))
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keys of %s: %w", ref, db.ClassifyError(err))
	}
	return keys, nil
}

// compareKeys orders numeric keys by value, before any non-numeric key,
// and everything else lexically.
func compareKeys(a, b string) int {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(x, y)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
