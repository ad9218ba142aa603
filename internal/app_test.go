package internal

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/meeting-client/testutil"
)

func newTestApp(t *testing.T, srv *testutil.FakeServer) *App {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Server.URL = srv.URL
	cfg.Poll.StatusInterval = 20 * time.Millisecond
	cfg.Poll.HistoryInterval = 20 * time.Millisecond
	cfg.State.DBPath = filepath.Join(t.TempDir(), "state.db")

	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_InvalidURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.URL = "::not a url"
	if _, err := NewApp(cfg, nil); err == nil {
		t.Error("NewApp() error = nil, want error")
	}
}

func TestApp_RunPollers(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", SummaryText: "## Notes"})
	srv.SetStatus(true, 0.2)
	srv.SetNotification(&testutil.FakeNotification{ID: "n1", Message: "Recording started", Type: "info"})

	app := newTestApp(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	app.RunPollers(ctx)

	v := app.Store.Snapshot()
	if !v.Recording {
		t.Error("Recording = false after polling")
	}
	if len(v.History) != 1 {
		t.Errorf("len(History) = %d, want 1", len(v.History))
	}
	if len(v.Toasts) > 1 {
		t.Errorf("len(Toasts) = %d; repeated polls must not repeat a toast", len(v.Toasts))
	}
	if srv.CountRequests(http.MethodGet, "/status") < 2 {
		t.Error("status poller did not tick")
	}

	entries, err := app.Ledger.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ledger entries = %d, want 1", len(entries))
	}
}

func TestApp_TagChangeRefreshesHistory(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", SummaryText: "## Notes"})
	app := newTestApp(t, srv)
	ctx := context.Background()

	if _, err := app.Meetings.Load(ctx, "a.wav"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := app.Tags.Add(ctx, "q3"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	v := app.Store.Snapshot()
	if len(v.History) != 1 || len(v.History[0].Tags) != 1 || v.History[0].Tags[0] != "q3" {
		t.Errorf("History = %+v, want refreshed row tagged q3", v.History)
	}
}
