package quality

import (
	"context"
	"slices"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhetl/internal/db/manager"
	"github.com/vvka-141/dwhetl/internal/logging"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var (
	songplaysUserID = dwh.KeyRef{Table: "songplays", Column: "user_id"}
	usersUserID     = dwh.KeyRef{Table: "users", Column: "user_id"}
)

func expectKeys(mock pgxmock.PgxConnIface, ref dwh.KeyRef, keys ...string) {
	expectColumns(mock, ref.Table, "dummy", ref.Column)
	rows := pgxmock.NewRows([]string{"key"})
	for _, k := range keys {
		rows.AddRow(k)
	}
	mock.ExpectQuery(`SELECT DISTINCT CAST("` + ref.Column + `" AS VARCHAR) FROM "public"."` + ref.Table + `"`).WillReturnRows(rows)
}

func newReconciler(mock pgxmock.PgxConnIface) *Reconciler {
	return NewReconciler(mock, manager.New(""), logging.NewNullLogger())
}

func TestReconciler_ReportsDifference(t *testing.T) {
	mock := newMockConn(t)
	expectKeys(mock, songplaysUserID, "1", "2", "3")
	expectKeys(mock, usersUserID, "1", "2", "3", "4")

	diff, err := newReconciler(mock).Reconcile(context.Background(), songplaysUserID, usersUserID)
	require.NoError(t, err)

	assert.Equal(t, 3, diff.LeftCount)
	assert.Equal(t, 4, diff.RightCount)
	assert.Empty(t, diff.OnlyInLeft)
	assert.Equal(t, []string{"4"}, diff.OnlyInRight)
	assert.False(t, diff.Matches())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconciler_Symmetric(t *testing.T) {
	left := []string{"7", "1", "10", "2"}
	right := []string{"2", "3", "1"}

	mock := newMockConn(t)
	expectKeys(mock, songplaysUserID, left...)
	expectKeys(mock, usersUserID, right...)
	forward, err := newReconciler(mock).Reconcile(context.Background(), songplaysUserID, usersUserID)
	require.NoError(t, err)

	mock = newMockConn(t)
	expectKeys(mock, usersUserID, right...)
	expectKeys(mock, songplaysUserID, left...)
	backward, err := newReconciler(mock).Reconcile(context.Background(), usersUserID, songplaysUserID)
	require.NoError(t, err)

	assert.Equal(t, forward.LeftCount, backward.RightCount)
	assert.Equal(t, forward.RightCount, backward.LeftCount)
	assert.Equal(t, forward.OnlyInLeft, backward.OnlyInRight)
	assert.Equal(t, forward.OnlyInRight, backward.OnlyInLeft)
	assert.Equal(t, []string{"7", "10"}, forward.OnlyInLeft, "numeric keys sort by value")
	assert.Equal(t, []string{"3"}, forward.OnlyInRight)
}

func TestReconciler_Identical(t *testing.T) {
	mock := newMockConn(t)
	expectKeys(mock, songplaysUserID, "a", "b")
	expectKeys(mock, usersUserID, "b", "a")

	diff, err := newReconciler(mock).Reconcile(context.Background(), songplaysUserID, usersUserID)
	require.NoError(t, err)
	assert.True(t, diff.Matches())
}

func TestReconciler_MissingColumn(t *testing.T) {
	mock := newMockConn(t)
	expectColumns(mock, "songplays", "songplay_id", "start_time")

	_, err := newReconciler(mock).Reconcile(context.Background(), songplaysUserID, usersUserID)
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrMissingRelation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareKeys(t *testing.T) {
	keys := []string{"b", "10", "2018-11-01 21:01:46", "2", "a", "1.5"}
	slices.SortFunc(keys, compareKeys)
	assert.Equal(t, []string{"1.5", "2", "10", "2018-11-01 21:01:46", "a", "b"}, keys)
}
