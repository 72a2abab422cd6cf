package quality

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

// containsMatcher matches when the executed SQL contains the expected text.
var containsMatcher = pgxmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
	if !strings.Contains(actualSQL, expectedSQL) {
		return fmt.Errorf("SQL %q does not contain %q", actualSQL, expectedSQL)
	}
	return nil
})

func newMockConn(t *testing.T) pgxmock.PgxConnIface {
	t.Helper()
	mock, err := pgxmock.NewConn(pgxmock.QueryMatcherOption(containsMatcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mock.Close(context.Background()) })
	return mock
}

func expectColumns(mock pgxmock.PgxConnIface, table string, columns ...string) {
	rows := pgxmock.NewRows([]string{"column_name"})
	for _, c := range columns {
		rows.AddRow(c)
	}
	mock.ExpectQuery("information_schema.columns").WithArgs("public", table).WillReturnRows(rows)
}

func expectCount(mock pgxmock.PgxConnIface, sql string, n int64) {
	mock.ExpectQuery(sql).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(n))
}
