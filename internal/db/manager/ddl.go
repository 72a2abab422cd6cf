package manager

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// Table is one star-schema table definition.
type Table struct {
	Name string
	// Key is the declared primary-key column; empty for staging tables.
	// Redshift does not enforce key constraints, so none are declared.
	Key        string
	Columns    string
	Attributes string
}

// Staging tables mirror the source JSON and enforce nothing.
var StagingTables = []Table{
	{
		Name: dwh.TableStagingEvents,
		Columns: `
	artist        VARCHAR(512),
	auth          VARCHAR(32),
	firstname     VARCHAR(128),
	gender        VARCHAR(8),
	iteminsession INTEGER,
	lastname      VARCHAR(128),
	length        DOUBLE PRECISION,
	level         VARCHAR(16),
	location      VARCHAR(512),
	method        VARCHAR(16),
	page          VARCHAR(64),
	registration  DOUBLE PRECISION,
	sessionid     INTEGER,
	song          VARCHAR(512),
	status        INTEGER,
	ts            TIMESTAMP,
	useragent     VARCHAR(512),
	userid        INTEGER`,
	},
	{
		Name: dwh.TableStagingSongs,
		Columns: `
	num_songs        INTEGER,
	artist_id        VARCHAR(32),
	artist_latitude  DOUBLE PRECISION,
	artist_longitude DOUBLE PRECISION,
	artist_location  VARCHAR(512),
	artist_name      VARCHAR(512),
	song_id          VARCHAR(32),
	title            VARCHAR(512),
	duration         DOUBLE PRECISION,
	year             INTEGER`,
	},
}

// AnalyticsTables are the fact and dimension tables, in transform order.
var AnalyticsTables = []Table{
	{
		Name: dwh.TableSongplays,
		Key:  "songplay_id",
		Columns: `
	songplay_id BIGINT GENERATED BY DEFAULT AS IDENTITY(0,1),
	start_time  TIMESTAMP NOT NULL SORTKEY,
	user_id     INTEGER NOT NULL DISTKEY,
	level       VARCHAR(16),
	song_id     VARCHAR(32),
	artist_id   VARCHAR(32),
	session_id  INTEGER,
	location    VARCHAR(512),
	user_agent  VARCHAR(512)`,
	},
	{
		Name: dwh.TableUsers,
		Key:  "user_id",
		Columns: `
	user_id    INTEGER NOT NULL SORTKEY,
	first_name VARCHAR(128),
	last_name  VARCHAR(128),
	gender     VARCHAR(8),
	level      VARCHAR(16)`,
		Attributes: "DISTSTYLE ALL",
	},
	{
		Name: dwh.TableSongs,
		Key:  "song_id",
		Columns: `
	song_id   VARCHAR(32) NOT NULL SORTKEY,
	title     VARCHAR(512),
	artist_id VARCHAR(32),
	year      INTEGER,
	duration  DOUBLE PRECISION`,
		Attributes: "DISTSTYLE ALL",
	},
	{
		Name: dwh.TableArtists,
		Key:  "artist_id",
		Columns: `
	artist_id VARCHAR(32) NOT NULL SORTKEY,
	name      VARCHAR(512),
	location  VARCHAR(512),
	latitude  DOUBLE PRECISION,
	longitude DOUBLE PRECISION`,
		Attributes: "DISTSTYLE ALL",
	},
	{
		Name: dwh.TableTime,
		Key:  "start_time",
		Columns: `
	start_time TIMESTAMP NOT NULL SORTKEY,
	hour       INTEGER,
	day        INTEGER,
	week       INTEGER,
	month      INTEGER,
	year       INTEGER,
	weekday    INTEGER`,
		Attributes: "DISTSTYLE ALL",
	},
}

// AllTables returns staging tables followed by analytics tables.
func AllTables() []Table {
	return append(append([]Table{}, StagingTables...), AnalyticsTables...)
}

// CreateStatements returns the DDL that creates the schema and every table.
func (m *Manager) CreateStatements() []string {
	var stmts []string
	if m.schema != dwh.DefaultSchema {
		stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", db.QuoteIdent(m.schema)))
	}
	for _, t := range AllTables() {
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s\n)", m.Qualified(t.Name), t.Columns)
		if t.Attributes != "" {
			stmt += " " + t.Attributes
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// DropStatements returns the DDL that drops every table, analytics first.
func (m *Manager) DropStatements() []string {
	return lo.Map(lo.Reverse(AllTables()), func(t Table, _ int) string {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", m.Qualified(t.Name))
	})
}

// CreateSchema creates any missing tables. Existing tables are left alone.
func (m *Manager) CreateSchema(ctx context.Context, conn dwh.DBConnection, logger dwh.Logger) error {
	return m.execAll(ctx, conn, logger, m.CreateStatements())
}

// DropSchema drops all pipeline tables.
func (m *Manager) DropSchema(ctx context.Context, conn dwh.DBConnection, logger dwh.Logger) error {
	return m.execAll(ctx, conn, logger, m.DropStatements())
}

func (m *Manager) execAll(ctx context.Context, conn dwh.DBConnection, logger dwh.Logger, stmts []string) error {
	for _, stmt := range stmts {
		logger.Verbose("%s", stmt)
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("DDL failed: %w", db.ClassifyError(err))
		}
	}
	return nil
}
