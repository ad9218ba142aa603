package internal

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	entry_id     TEXT PRIMARY KEY,
	id           TEXT NOT NULL,
	message      TEXT NOT NULL,
	type         TEXT NOT NULL DEFAULT '',
	delivered_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_id ON notifications(id);
`

// LedgerEntry is a delivered notification
type LedgerEntry struct {
	EntryID     string         `json:"entry_id" yaml:"entry_id"`
	ID          NotificationID `json:"id" yaml:"id"`
	Message     string         `json:"message" yaml:"message"`
	Type        string         `json:"type" yaml:"type"`
	DeliveredAt time.Time      `json:"delivered_at" yaml:"delivered_at"`
}

// Ledger records delivered notifications in SQLite
type Ledger struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// OpenLedger opens or creates the ledger database at path
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l, err := NewLedger(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// NewLedger wraps an open database, creating the schema if needed
func NewLedger(db *sql.DB) (*Ledger, error) {
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	return &Ledger{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

func (l *Ledger) newEntryID(t time.Time) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), l.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Record stores a delivered notification under key
func (l *Ledger) Record(key NotificationID, n Notification) error {
	now := time.Now().UTC()
	entryID, err := l.newEntryID(now)
	if err != nil {
		return fmt.Errorf("failed to generate entry id: %w", err)
	}

	_, err = l.db.Exec(
		`INSERT INTO notifications (entry_id, id, message, type, delivered_at) VALUES (?, ?, ?, ?, ?)`,
		entryID, string(key), n.Message, n.Type, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// LastID returns the key of the most recently delivered notification
func (l *Ledger) LastID() (NotificationID, error) {
	var id string
	err := l.db.QueryRow(`SELECT id FROM notifications ORDER BY entry_id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	return NotificationID(id), nil
}

// Recent returns up to limit entries, newest first
func (l *Ledger) Recent(limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(
		`SELECT entry_id, id, message, type, delivered_at FROM notifications ORDER BY entry_id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var id, delivered string
		if err := rows.Scan(&e.EntryID, &id, &e.Message, &e.Type, &delivered); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		e.ID = NotificationID(id)
		if t, err := time.Parse(time.RFC3339Nano, delivered); err == nil {
			e.DeliveredAt = t
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry and returns how many were removed
func (l *Ledger) Clear() (int64, error) {
	res, err := l.db.Exec(`DELETE FROM notifications`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear ledger: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}
