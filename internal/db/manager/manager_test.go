package manager_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhetl/internal/db/manager"
	"github.com/vvka-141/dwhetl/internal/logging"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

func TestManager_Columns(t *testing.T) {
	tests := []struct {
		name      string
		rows      []string
		queryErr  error
		want      []string
		wantErr   error
		errSubstr string
	}{
		{
			name: "ordinal order",
			rows: []string{"song_id", "title", "artist_id", "year", "duration"},
			want: []string{"song_id", "title", "artist_id", "year", "duration"},
		},
		{
			name:      "missing table",
			rows:      nil,
			wantErr:   dwh.ErrMissingRelation,
			errSubstr: "relation public.songs does not exist",
		},
		{
			name:     "query error",
			queryErr: errors.New("connection reset"),
			wantErr:  dwh.ErrExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewConn()
			require.NoError(t, err)
			defer mock.Close(context.Background())

			expect := mock.ExpectQuery("FROM information_schema.columns").WithArgs("public", "songs")
			if tt.queryErr != nil {
				expect.WillReturnError(tt.queryErr)
			} else {
				rows := pgxmock.NewRows([]string{"column_name"})
				for _, r := range tt.rows {
					rows.AddRow(r)
				}
				expect.WillReturnRows(rows)
			}

			got, err := manager.New("").Columns(context.Background(), mock, "songs")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.errSubstr != "" {
					assert.Contains(t, err.Error(), tt.errSubstr)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestManager_RequireColumn(t *testing.T) {
	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	defer mock.Close(context.Background())

	mgr := manager.New("analytics")

	mock.ExpectQuery("FROM information_schema.columns").WithArgs("analytics", "users").
		WillReturnRows(pgxmock.NewRows([]string{"column_name"}).AddRow("user_id").AddRow("level"))
	cols, err := mgr.RequireColumn(context.Background(), mock, "users", "user_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "level"}, cols)

	mock.ExpectQuery("FROM information_schema.columns").WithArgs("analytics", "users").
		WillReturnRows(pgxmock.NewRows([]string{"column_name"}).AddRow("user_id").AddRow("level"))
	_, err = mgr.RequireColumn(context.Background(), mock, "users", "userid")
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrMissingRelation)
	assert.Contains(t, err.Error(), `column "userid"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_Qualified(t *testing.T) {
	assert.Equal(t, `"public"."time"`, manager.New("").Qualified("time"))
	assert.Equal(t, `"dwh"."users"`, manager.New("dwh").Qualified("users"))
	assert.Equal(t, dwh.DefaultSchema, manager.New("").Schema())
}

func TestManager_CreateStatements(t *testing.T) {
	stmts := manager.New("").CreateStatements()
	require.Len(t, stmts, 7)
	assert.Contains(t, stmts[0], `CREATE TABLE IF NOT EXISTS "public"."staging_events"`)
	assert.Contains(t, stmts[2], `"public"."songplays"`)
	assert.Contains(t, stmts[2], "GENERATED BY DEFAULT AS IDENTITY(0,1)")
	assert.True(t, strings.HasSuffix(stmts[3], "DISTSTYLE ALL"))

	withSchema := manager.New("dwh").CreateStatements()
	require.Len(t, withSchema, 8)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "dwh"`, withSchema[0])
}

func TestManager_DropStatements_ReverseOrder(t *testing.T) {
	stmts := manager.New("").DropStatements()
	require.Len(t, stmts, 7)
	assert.Equal(t, `DROP TABLE IF EXISTS "public"."time"`, stmts[0])
	assert.Equal(t, `DROP TABLE IF EXISTS "public"."staging_events"`, stmts[6])
}

func TestManager_CreateSchema(t *testing.T) {
	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	defer mock.Close(context.Background())

	mgr := manager.New("")
	for _, stmt := range mgr.CreateStatements() {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	}

	require.NoError(t, mgr.CreateSchema(context.Background(), mock, logging.NewNullLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_DropSchema_StopsOnError(t *testing.T) {
	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	defer mock.Close(context.Background())

	mgr := manager.New("")
	stmts := mgr.DropStatements()
	mock.ExpectExec(regexp.QuoteMeta(stmts[0])).WillReturnResult(pgxmock.NewResult("DROP TABLE", 0))
	mock.ExpectExec(regexp.QuoteMeta(stmts[1])).WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied"})

	err = mgr.DropSchema(context.Background(), mock, logging.NewNullLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrExecutionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTables_KeysDeclared(t *testing.T) {
	keys := map[string]string{}
	for _, table := range manager.AnalyticsTables {
		keys[table.Name] = table.Key
	}
	assert.Equal(t, map[string]string{
		"songplays": "songplay_id",
		"users":     "user_id",
		"songs":     "song_id",
		"artists":   "artist_id",
		"time":      "start_time",
	}, keys)
	for _, table := range manager.StagingTables {
		assert.Empty(t, table.Key, table.Name)
	}
}
