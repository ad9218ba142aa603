package cmd

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/meeting-client/internal"
	"github.com/iksnae/meeting-client/testutil"
)

func TestListCommand(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Planning", SummaryText: "## Notes", Tags: []string{"q3"}})
	srv.AddRecording(testutil.FakeRecording{Filename: "b.wav", Title: "Standup", SummaryText: internal.PlaceholderProcessing})
	srv.AddRecording(testutil.FakeRecording{Filename: "c.wav", Title: internal.SentinelShortTitle})
	flags := cliFlags(t, srv)

	out, _, err := runCLI(t, flags, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	for _, want := range []string{"Found 3 recording(s)", "Planning", "Standup", "processed", "processing", "too short", "q3", "show <filename>"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestListCommand_Empty(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	flags := cliFlags(t, srv)

	out, _, err := runCLI(t, flags, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "No recordings found") {
		t.Errorf("empty list output:\n%s", out)
	}
}

func TestListCommand_ServerDown(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Fail(http.MethodGet, "/history", http.StatusBadGateway)
	flags := cliFlags(t, srv)

	if _, _, err := runCLI(t, flags, "list"); err == nil {
		t.Error("list error = nil, want error")
	}
}

func TestSearchCommand(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Budget review", SummaryText: "## Notes"})
	srv.AddRecording(testutil.FakeRecording{Filename: "b.wav", Title: "Standup", SummaryText: "## Notes"})
	flags := cliFlags(t, srv)

	out, _, err := runCLI(t, flags, "search", "budget")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, `1 recording(s) match "budget"`) || strings.Contains(out, "Standup") {
		t.Errorf("search output:\n%s", out)
	}
	reqs := srv.Requests(http.MethodGet, "/search")
	if len(reqs) != 1 || !strings.Contains(reqs[0].Query, "q=budget") {
		t.Errorf("search requests = %+v", reqs)
	}

	out, _, err = runCLI(t, flags, "search", "nothing-here")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, `No recordings match "nothing-here"`) {
		t.Errorf("no-match output:\n%s", out)
	}
}

func TestSearchCommand_BlankQueryLists(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Title: "Planning", SummaryText: "## Notes"})
	flags := cliFlags(t, srv)

	out, _, err := runCLI(t, flags, "search", "  ")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "Planning") {
		t.Errorf("blank search output:\n%s", out)
	}
	if srv.CountRequests(http.MethodGet, "/search") != 0 {
		t.Error("blank query hit /search")
	}
}

func TestDisplayHistory_PendingUpload(t *testing.T) {
	var buf bytes.Buffer
	pending := []internal.PendingUpload{{ID: "p1", Name: "interview.m4a", StartedAt: time.Now()}}

	displayHistory(&buf, nil, pending, "")

	out := buf.String()
	if !strings.Contains(out, "interview.m4a") || !strings.Contains(out, "uploading") {
		t.Errorf("pending row missing:\n%s", out)
	}
	if strings.Contains(out, "Tip:") {
		t.Error("tip shown without recordings")
	}
}

func TestCreatedLabel(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	tests := []struct {
		name      string
		createdAt string
		want      string
	}{
		{"earlier today", "2026-03-10T07:15:00", "Today 07:15"},
		{"space separated", "2026-03-10 07:15:00", "Today 07:15"},
		{"fractional seconds", "2026-03-10T07:15:00.123456", "Today 07:15"},
		{"yesterday evening", "2026-03-09T23:00:00", "Mon 23:00"},
		{"last week", "2026-03-04 09:30:00", "Wed 09:30"},
		{"this year", "2026-01-05T14:00:00", "Jan 05 14:00"},
		{"years ago", "2024-06-01T10:00:00", "2024-06-01"},
		{"unparseable", "sometime", "sometime"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createdLabel(tt.createdAt, now); got != tt.want {
				t.Errorf("createdLabel(%q) = %q, want %q", tt.createdAt, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a much longer title", 10, "a much ..."},
		{"réunion d'équipe", 8, "réuni..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
