package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/meeting-client/testutil"
)

func TestOpenLedger(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
		wantLen int
	}{
		{
			name: "existing ledger",
			setup: func(t *testing.T) string {
				dbPath := filepath.Join(testutil.CreateTempDir(t), "state.db")
				testutil.CreateLedgerFixture(t, dbPath)
				return dbPath
			},
			wantLen: len(testutil.LedgerFixtureEntries),
		},
		{
			name: "new ledger in missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "nested", "dir", "state.db")
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := OpenLedger(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenLedger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer l.Close()

			entries, err := l.Recent(10)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(entries) != tt.wantLen {
				t.Errorf("len(Recent()) = %d, want %d", len(entries), tt.wantLen)
			}
		})
	}
}

func TestLedger_FixtureOrder(t *testing.T) {
	dbPath := filepath.Join(testutil.CreateTempDir(t), "state.db")
	testutil.CreateLedgerFixture(t, dbPath)

	l, err := OpenLedger(dbPath)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	defer l.Close()

	last, err := l.LastID()
	if err != nil {
		t.Fatalf("LastID() error = %v", err)
	}
	if last != "3" {
		t.Errorf("LastID() = %q, want 3", last)
	}

	entries, err := l.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "Summary ready" || entries[1].Type != "error" {
		t.Errorf("Recent(2) = %+v", entries)
	}
	if entries[0].DeliveredAt.IsZero() {
		t.Error("DeliveredAt not parsed")
	}
}

func TestLedger_RecordAndClear(t *testing.T) {
	l, err := NewLedger(testutil.CreateInMemoryDB(t))
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}

	if last, err := l.LastID(); err != nil || last != "" {
		t.Fatalf("LastID() on empty ledger = %q, %v", last, err)
	}

	for _, id := range []NotificationID{"a", "b", "c"} {
		if err := l.Record(id, Notification{ID: id, Message: "msg " + string(id), Type: "info"}); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}

	last, err := l.LastID()
	if err != nil {
		t.Fatalf("LastID() error = %v", err)
	}
	if last != "c" {
		t.Errorf("LastID() = %q, want c; entries recorded in the same millisecond must stay ordered", last)
	}

	n, err := l.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() removed %d, want 3", n)
	}
	if entries, _ := l.Recent(10); len(entries) != 0 {
		t.Errorf("entries after Clear = %d, want 0", len(entries))
	}
}

func TestLedger_SeedsNotifier(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertNotification(t, db, "01HQ0000000000000000000009", "42", "Saved", "info", time.Now())

	l, err := NewLedger(db)
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}

	store := NewStore()
	n := NewNotifier(store, l)
	if got := store.Snapshot().LastNotificationID; got != "42" {
		t.Fatalf("LastNotificationID = %q, want 42", got)
	}
	n.afterFunc = func(time.Duration, func()) *time.Timer { return nil }
	if n.Observe(&StatusSnapshot{Notification: &Notification{ID: "42", Message: "Saved"}}) {
		t.Error("Observe() re-delivered a notification recorded in the ledger")
	}
}
