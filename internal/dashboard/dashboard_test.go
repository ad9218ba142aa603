package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/meeting-client/internal"
	"github.com/iksnae/meeting-client/testutil"
)

func newTestModel(t *testing.T, srv *testutil.FakeServer) (Model, *internal.App) {
	t.Helper()
	cfg := internal.DefaultConfig()
	cfg.Server.URL = srv.URL
	cfg.Search.Debounce = 20 * time.Millisecond
	cfg.State.DBPath = filepath.Join(t.TempDir(), "state.db")

	app, err := internal.NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	app.UseAlerter(app.Notifier)

	return New(context.Background(), app), app
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func syncState(m Model, app *internal.App) Model {
	next, _ := m.Update(StateMsg{View: app.Store.Snapshot()})
	return next.(Model)
}

func TestModel_RendersSnapshot(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	m, _ := newTestModel(t, srv)

	v := internal.NewViewState()
	v.Recording = true
	v.Elapsed = 65 * time.Second
	v.Caption = internal.CaptionRecording
	v.Pulse = internal.PulseFor(0.2)
	v.History = []internal.Recording{
		{Filename: "a.wav", Title: "Planning", SummaryText: "## Notes"},
		{Filename: "b.wav", Title: "Standup", SummaryText: internal.PlaceholderProcessing},
	}
	v.Toasts = []internal.Toast{{ID: "n1", Message: "Disk almost full", Type: "warning"}}

	next, _ := m.Update(StateMsg{View: v})
	out := next.(Model).View()

	for _, want := range []string{"REC", "01:05", "Recording", "Planning", "Standup", "Disk almost full"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_IdleShowsCaption(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	m, _ := newTestModel(t, srv)

	out := m.View()
	if !strings.Contains(out, internal.CaptionReady) {
		t.Errorf("idle View() missing caption %q", internal.CaptionReady)
	}
	if !strings.Contains(out, "No recordings yet") {
		t.Error("idle View() missing empty history hint")
	}
}

func TestModel_Quit(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	m, _ := newTestModel(t, srv)

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModel_StartStop(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	m, app := newTestModel(t, srv)

	_, cmd := press(t, m, "s")
	msg, ok := cmd().(actionMsg)
	if !ok || msg.err != nil {
		t.Fatalf("start = %+v", msg)
	}
	if !srv.IsRecording() {
		t.Error("server not recording after s")
	}
	if !app.Store.Snapshot().Recording {
		t.Error("status was not polled after start")
	}

	_, cmd = press(t, m, "x")
	cmd()
	if srv.IsRecording() {
		t.Error("server still recording after x")
	}
}

func TestModel_SearchMode(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Alpha review", SummaryText: "## Notes"})
	srv.AddRecording(testutil.FakeRecording{Filename: "b.wav", Title: "Beta", SummaryText: "## Notes"})
	m, app := newTestModel(t, srv)

	m, _ = press(t, m, "/")
	if m.mode != modeSearch {
		t.Fatalf("mode = %v after /, want search", m.mode)
	}

	m, cmd := press(t, m, "a", "l")
	if m.search.Value() != "al" {
		t.Errorf("search value = %q, want %q", m.search.Value(), "al")
	}
	if cmd == nil {
		t.Error("typing returned no command")
	}

	// The keystroke commands are batched with cursor blinks; run the search directly
	m.runSearch("alpha")()
	deadline := time.Now().Add(2 * time.Second)
	for srv.CountRequests(http.MethodGet, "/search") == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	m = syncState(m, app)
	if len(m.view.History) != 1 || m.view.History[0].Filename != "a.wav" {
		t.Errorf("History = %+v, want only a.wav", m.view.History)
	}

	m, _ = press(t, m, "enter")
	if m.mode != modeBrowse {
		t.Errorf("mode = %v after enter, want browse", m.mode)
	}
	if m.search.Value() == "" {
		t.Error("enter should keep the query")
	}
}

func TestModel_OpenMeetingAndTag(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Planning", SummaryText: "## Notes\n\nShip it."})
	m, app := newTestModel(t, srv)
	ctx := context.Background()

	if err := app.History.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	m = syncState(m, app)

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	cmd()
	m = syncState(m, app)

	if m.view.Open == nil || m.view.Open.Filename != "a.wav" {
		t.Fatalf("Open = %+v, want a.wav", m.view.Open)
	}
	if m.summary == "" || m.summaryKey.filename != "a.wav" {
		t.Error("summary was not rendered")
	}
	if out := m.View(); !strings.Contains(out, "Planning") || !strings.Contains(out, "/audio/a.wav") {
		t.Errorf("detail pane missing title or audio link")
	}

	m, _ = press(t, m, "a")
	if m.mode != modeTag {
		t.Fatalf("mode = %v after a, want tag", m.mode)
	}
	m, cmd = press(t, m, "q", "3", "enter")
	if m.mode != modeBrowse {
		t.Errorf("mode = %v after enter, want browse", m.mode)
	}
	if msg, ok := cmd().(actionMsg); !ok || msg.err != nil {
		t.Fatalf("add tag = %+v", msg)
	}

	recs := srv.Recordings()
	if len(recs[0].Tags) != 1 || recs[0].Tags[0] != "q3" {
		t.Errorf("server tags = %v, want [q3]", recs[0].Tags)
	}

	m = syncState(m, app)
	_, cmd = press(t, m, "esc")
	if app.Store.Snapshot().Open == nil {
		t.Fatal("esc closed the meeting inside Update")
	}
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	cmd()
	if app.Store.Snapshot().Open != nil {
		t.Error("esc did not close the meeting")
	}
}

func TestModel_CopySummary(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Planning", SummaryText: "## Notes\n\nShip it."})
	m, app := newTestModel(t, srv)

	var copied string
	app.Copier.WriteAll = func(text string) error {
		copied = text
		return nil
	}

	if _, cmd := press(t, m, "y"); cmd != nil {
		t.Error("y with nothing open returned a command")
	}

	if _, err := app.Meetings.Load(context.Background(), "a.wav"); err != nil {
		t.Fatal(err)
	}
	m = syncState(m, app)

	m, cmd := press(t, m, "y")
	if cmd == nil {
		t.Fatal("y returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if copied != "## Notes\n\nShip it." {
		t.Errorf("clipboard = %q", copied)
	}
	if !strings.Contains(m.lastMessage, internal.CopiedMessage) {
		t.Errorf("status = %q, want %q", m.lastMessage, internal.CopiedMessage)
	}

	app.Copier.WriteAll = func(string) error { return errors.New("no clipboard utilities available") }
	_, cmd = press(t, m, "y")
	msg, ok := cmd().(actionMsg)
	if !ok || msg.err == nil {
		t.Fatalf("copy = %+v, want error", msg)
	}
	toasts := app.Store.Snapshot().Toasts
	if len(toasts) == 0 || toasts[len(toasts)-1].Message != internal.AlertCopyFailed {
		t.Errorf("toasts = %+v, want %q", toasts, internal.AlertCopyFailed)
	}
}

func TestRun_EscThenQuitExits(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Planning", SummaryText: "## Notes"})
	_, app := newTestModel(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := app.Meetings.Load(ctx, "a.wav"); err != nil {
		t.Fatal(err)
	}

	in, keys := io.Pipe()
	defer keys.Close()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, app, tea.WithInput(in), tea.WithOutput(io.Discard))
	}()

	time.Sleep(100 * time.Millisecond)
	if _, err := keys.Write([]byte{0x1b}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if _, err := keys.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard did not exit after esc then q")
	}
	if app.Store.Snapshot().Open != nil {
		t.Error("esc did not close the meeting")
	}
}

func TestModel_TagFailureShowsErrorToast(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", SummaryText: "## Notes"})
	srv.Fail(http.MethodPost, "/tags/a.wav", http.StatusInternalServerError)
	m, app := newTestModel(t, srv)

	if _, err := app.Meetings.Load(context.Background(), "a.wav"); err != nil {
		t.Fatal(err)
	}
	m = syncState(m, app)

	m.addTag("urgent")()
	v := app.Store.Snapshot()
	if len(v.Open.Tags) != 0 {
		t.Errorf("Open.Tags = %v, want rollback", v.Open.Tags)
	}

	m = syncState(m, app)
	if out := m.View(); !strings.Contains(out, internal.AlertAddTagFailed) {
		t.Error("View() missing error toast")
	}
}

func TestModel_ConfirmDelete(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", SummaryText: "## Notes"})
	srv.AddRecording(testutil.FakeRecording{Filename: "b.wav", SummaryText: "## Notes"})
	m, app := newTestModel(t, srv)

	if err := app.History.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	m = syncState(m, app)

	m, _ = press(t, m, "down", "d")
	if m.mode != modeConfirm || m.confirmTarget != "b.wav" {
		t.Fatalf("mode = %v target = %q, want confirm b.wav", m.mode, m.confirmTarget)
	}
	if !strings.Contains(m.View(), internal.ConfirmDelete) {
		t.Error("View() missing delete prompt")
	}

	m, _ = press(t, m, "n")
	if m.mode != modeBrowse {
		t.Errorf("mode = %v after n, want browse", m.mode)
	}
	if srv.CountRequests(http.MethodDelete, "") != 0 {
		t.Error("declined delete sent a request")
	}

	m, cmd := press(t, m, "d", "y")
	cmd()
	if got := srv.CountRequests(http.MethodDelete, "/history/b.wav"); got != 1 {
		t.Errorf("DELETE /history/b.wav count = %d, want 1", got)
	}

	m = syncState(m, app)
	if len(m.view.History) != 1 || m.cursor != 0 {
		t.Errorf("History = %+v cursor = %d after delete", m.view.History, m.cursor)
	}
}

func TestModel_ClearAll(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", SummaryText: "## Notes"})
	m, app := newTestModel(t, srv)

	if _, err := app.Meetings.Load(context.Background(), "a.wav"); err != nil {
		t.Fatal(err)
	}
	m = syncState(m, app)

	m, _ = press(t, m, "C")
	if !strings.Contains(m.View(), internal.ConfirmClearAll) {
		t.Error("View() missing clear prompt")
	}
	_, cmd := press(t, m, "y")
	cmd()

	v := app.Store.Snapshot()
	if len(v.History) != 0 || v.Open != nil {
		t.Errorf("after clear: History = %d, Open = %+v", len(v.History), v.Open)
	}
}

func TestModel_NextDeviceCycles(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	m, app := newTestModel(t, srv)

	m.loadDevices()()
	m = syncState(m, app)
	if m.view.SelectedDevice != 0 {
		t.Fatalf("SelectedDevice = %d after load, want 0", m.view.SelectedDevice)
	}

	_, cmd := press(t, m, "m")
	cmd()
	if got := srv.SelectedDevice(); got != 1 {
		t.Errorf("server selected device = %d, want 1", got)
	}
}
