package db_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/internal/logging"
	dwhtesting "github.com/vvka-141/dwhetl/internal/testing"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

func testConnectionConfig(t *testing.T) *dwh.ConnectionConfig {
	t.Helper()
	parsed, err := pgx.ParseConfig(dwhtesting.RequireDatabase(t))
	require.NoError(t, err)

	return &dwh.ConnectionConfig{
		Host:     parsed.Host,
		Port:     int(parsed.Port),
		Database: parsed.Database,
		Username: parsed.User,
		Password: parsed.Password,
		SSLMode:  "disable",
		AppName:  dwh.AppName,
	}
}

func TestStandardConnector_Integration_Connect(t *testing.T) {
	config := testConnectionConfig(t)
	ctx := context.Background()

	conn, err := db.NewStandardConnector(config, logging.NewNullLogger()).Connect(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx) //nolint:errcheck

	var version string
	require.NoError(t, conn.QueryRow(ctx, "SELECT version()").Scan(&version))
	assert.Contains(t, version, "PostgreSQL")

	var appName string
	require.NoError(t, conn.QueryRow(ctx, "SHOW application_name").Scan(&appName))
	assert.Equal(t, dwh.AppName, appName)
}

func TestStandardConnector_Integration_WrongPassword(t *testing.T) {
	config := testConnectionConfig(t)
	config.Password = "definitely-wrong-password"

	_, err := db.NewStandardConnector(config, logging.NewNullLogger()).Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrConnectionFailed)
	assert.Equal(t, dwh.ExitConnectionError, dwh.ExitCodeForError(err))
}

func TestStandardConnector_Integration_UnknownDatabase(t *testing.T) {
	config := testConnectionConfig(t)
	config.Database = "dwhetl_no_such_db"

	_, err := db.NewStandardConnector(config, logging.NewNullLogger()).Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrConnectionFailed)
}
