// Package store persists flow documents and run records in SQLite.
//
// The database is a single file opened in WAL mode with a single writer
// connection. Flows are upserted by name and content-addressed by their
// canonical document hash; runs are append-only records keyed by
// time-sortable UUIDv7 ids.
package store
