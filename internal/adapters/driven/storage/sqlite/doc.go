// Package sqlite keeps sync run history in a SQLite database using
// modernc.org/sqlite, which needs no cgo.
//
// The database lives at <data dir>/runs.db. Migrations are embedded from
// migrations/ as NNN_name.up.sql files; each pending one runs in its own
// transaction and its version is recorded in schema_migrations.
//
// WAL journaling lets `docsync history` read while a sync writes.
package sqlite
