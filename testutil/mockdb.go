package testutil

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

const notificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
	entry_id     TEXT PRIMARY KEY,
	id           TEXT NOT NULL,
	message      TEXT NOT NULL,
	type         TEXT NOT NULL DEFAULT '',
	delivered_at TEXT NOT NULL
)`

// CreateInMemoryDB creates an in-memory SQLite database for testing. The pool
// is pinned to one connection so every query sees the same database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(notificationsTable); err != nil {
		t.Fatalf("Failed to create notifications table: %v", err)
	}

	return db
}

// InsertNotification inserts a ledger row
func InsertNotification(t *testing.T, db *sql.DB, entryID, id, message, typ string, deliveredAt time.Time) {
	t.Helper()
	insertSQL := "INSERT INTO notifications (entry_id, id, message, type, delivered_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := db.Exec(insertSQL, entryID, id, message, typ, deliveredAt.UTC().Format(time.RFC3339Nano)); err != nil {
		t.Fatalf("Failed to insert notification: %v", err)
	}
}
