package etl

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// Sources are the COPY inputs for the staging tables.
type Sources struct {
	LogData     string
	LogJSONPath string
	SongData    string
	Region      string
	IAMRoleARN  string
}

// jsonFormat is the FORMAT AS JSON argument: a jsonpaths file or 'auto'.
func jsonFormat(jsonPath string) string {
	if jsonPath == "" {
		return db.QuoteLiteral("auto")
	}
	return db.QuoteLiteral(jsonPath)
}

// CopySQL renders a COPY from S3 JSON into schema.table.
// Event timestamps arrive as epoch milliseconds.
func CopySQL(schema, table, source, jsonPath, region, roleARN string, epochMillis bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "COPY %s\nFROM %s\nCREDENTIALS %s\nREGION %s\nFORMAT AS JSON %s",
		db.QualifiedName(schema, table),
		db.QuoteLiteral(source),
		db.QuoteLiteral("aws_iam_role="+roleARN),
		db.QuoteLiteral(region),
		jsonFormat(jsonPath),
	)
	if epochMillis {
		b.WriteString("\nTIMEFORMAT AS 'epochmillisecs'")
	}
	return b.String()
}

const insertSongplays = `INSERT INTO %[1]s (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
SELECT e.ts, e.userid, e.level, s.song_id, s.artist_id, e.sessionid, e.location, e.useragent
FROM %[2]s e
JOIN %[3]s s ON e.song = s.title AND e.artist = s.artist_name
WHERE e.page = 'NextSong' AND e.ts IS NOT NULL AND e.userid IS NOT NULL`

const insertUsers = `INSERT INTO %[1]s (user_id, first_name, last_name, gender, level)
SELECT DISTINCT userid, firstname, lastname, gender, level
FROM %[2]s
WHERE page = 'NextSong' AND userid IS NOT NULL`

const insertSongs = `INSERT INTO %[1]s (song_id, title, artist_id, year, duration)
SELECT DISTINCT song_id, title, artist_id, year, duration
FROM %[2]s
WHERE song_id IS NOT NULL`

const insertArtists = `INSERT INTO %[1]s (artist_id, name, location, latitude, longitude)
SELECT DISTINCT artist_id, artist_name, artist_location, artist_latitude, artist_longitude
FROM %[2]s
WHERE artist_id IS NOT NULL`

const insertTime = `INSERT INTO %[1]s (start_time, hour, day, week, month, year, weekday)
SELECT DISTINCT start_time,
       EXTRACT(hour FROM start_time),
       EXTRACT(day FROM start_time),
       EXTRACT(week FROM start_time),
       EXTRACT(month FROM start_time),
       EXTRACT(year FROM start_time),
       EXTRACT(dow FROM start_time)
FROM %[2]s
WHERE start_time IS NOT NULL`

// InsertSQL renders the transform statement that fills table, or "" if table
// is not an analytics table.
func InsertSQL(schema, table string) string {
	q := func(name string) string { return db.QualifiedName(schema, name) }

	switch table {
	case dwh.TableSongplays:
		return fmt.Sprintf(insertSongplays, q(dwh.TableSongplays), q(dwh.TableStagingEvents), q(dwh.TableStagingSongs))
	case dwh.TableUsers:
		return fmt.Sprintf(insertUsers, q(dwh.TableUsers), q(dwh.TableStagingEvents))
	case dwh.TableSongs:
		return fmt.Sprintf(insertSongs, q(dwh.TableSongs), q(dwh.TableStagingSongs))
	case dwh.TableArtists:
		return fmt.Sprintf(insertArtists, q(dwh.TableArtists), q(dwh.TableStagingSongs))
	case dwh.TableTime:
		return fmt.Sprintf(insertTime, q(dwh.TableTime), q(dwh.TableSongplays))
	}
	return ""
}
