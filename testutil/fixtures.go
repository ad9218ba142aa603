package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// LedgerFixtureEntries are the rows written by CreateLedgerFixture, oldest first
var LedgerFixtureEntries = []struct {
	EntryID string
	ID      string
	Message string
	Type    string
}{
	{EntryID: "01HQ0000000000000000000001", ID: "1", Message: "Recording saved", Type: "info"},
	{EntryID: "01HQ0000000000000000000002", ID: "2", Message: "Microphone disconnected", Type: "error"},
	{EntryID: "01HQ0000000000000000000003", ID: "3", Message: "Summary ready", Type: "info"},
}

// CreateLedgerFixture creates a ledger database file with sample notifications
func CreateLedgerFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(notificationsTable); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, e := range LedgerFixtureEntries {
		InsertNotification(t, db, e.EntryID, e.ID, e.Message, e.Type, base.Add(time.Duration(i)*time.Minute))
	}
}

// CreateConfigFixture writes a config file pointing at serverURL and a state
// database inside dir, and returns the config path.
func CreateConfigFixture(t *testing.T, dir, serverURL string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config directory: %v", err)
	}

	content := fmt.Sprintf(`server:
  url: %s
poll:
  status_interval: 50ms
  history_interval: 100ms
search:
  debounce: 20ms
upload:
  refresh_delay: 10ms
state:
  db_path: %s
`, serverURL, filepath.Join(dir, "state.db"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	return path
}
