// Package manager provides catalog lookups and star-schema DDL for the warehouse.
//
// Column discovery reads information_schema.columns so the quality checker
// and reconciler can refuse to run against tables or columns that do not
// exist. Schema creation and removal issue Redshift DDL for the two staging
// tables and the five analytics tables.
//
// All identifiers go through pgx.Identifier.Sanitize().
//
// # Example Usage
//
//	mgr := manager.New("public")
//
//	cols, err := mgr.Columns(ctx, conn, "songs")
//	err = mgr.RequireColumn(ctx, conn, "songs", "song_id")
//
//	err = mgr.CreateSchema(ctx, conn)
//	err = mgr.DropSchema(ctx, conn)
//
// # Thread Safety
//
// Manager holds no mutable state; thread safety depends on the injected connection.
package manager
