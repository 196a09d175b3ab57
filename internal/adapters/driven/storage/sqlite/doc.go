// Package sqlite provides SQLite-backed persistence for redline
// sessions. The database lives in the user's data directory and is
// opened in WAL mode; schema changes are applied through embedded
// migrations at startup.
package sqlite
