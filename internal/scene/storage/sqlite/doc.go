// Package sqlite persists scene generation runs in SQLite.
//
// All database read/write operations for runs and their placed objects
// belong here rather than in the stage packages (l1coords .. l5solver).
// The schema is managed by embedded golang-migrate migrations.
package sqlite
