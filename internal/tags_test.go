package internal

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/iksnae/meeting-client/testutil"
)

func newTagFixture(t *testing.T) (*TagEditor, *testutil.FakeServer, *Store) {
	t.Helper()
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", Tags: []string{"existing"}})

	store := NewStore()
	store.Update(func(v *ViewState) {
		v.Open = &OpenMeeting{Filename: "a.wav", Tags: []string{"existing"}}
	})
	return NewTagEditor(NewTestClient(t, srv.URL), store, nil), srv, store
}

func TestTagEditor_AddOptimistic(t *testing.T) {
	e, srv, store := newTagFixture(t)

	var seen [][]string
	store.Subscribe(func(v ViewState) {
		if v.Open != nil {
			seen = append(seen, v.Open.Tags)
		}
	})
	refreshed := false
	e.OnChanged = func(context.Context) { refreshed = true }

	sent, err := e.Add(context.Background(), "  planning ")
	if err != nil || !sent {
		t.Fatalf("Add() = %v, %v, want true, nil", sent, err)
	}

	if len(seen) == 0 || !reflect.DeepEqual(seen[0], []string{"existing", "planning"}) {
		t.Errorf("first published tags = %v, want optimistic [existing planning]", seen)
	}
	if !refreshed {
		t.Error("OnChanged not called after a successful add")
	}
	if got := srv.Recordings()[0].Tags; !reflect.DeepEqual(got, []string{"existing", "planning"}) {
		t.Errorf("server tags = %v", got)
	}
}

func TestTagEditor_AddRollsBack(t *testing.T) {
	e, srv, store := newTagFixture(t)
	srv.Fail(http.MethodPost, "/tags/a.wav", http.StatusInternalServerError)

	var alerted string
	e.Alerter = AlertFunc(func(message string, err error) { alerted = message })

	var published []string
	store.Subscribe(func(v ViewState) {
		published = append([]string(nil), v.Open.Tags...)
		if len(published) == 2 && published[1] != "planning" {
			t.Errorf("unexpected optimistic tag %v", published)
		}
	})

	if _, err := e.Add(context.Background(), "planning"); err == nil {
		t.Fatal("Add() error = nil, want error")
	}

	if got := store.Snapshot().Open.Tags; !reflect.DeepEqual(got, []string{"existing"}) {
		t.Errorf("tags after rollback = %v, want [existing]", got)
	}
	if alerted != AlertAddTagFailed {
		t.Errorf("alert = %q, want %q", alerted, AlertAddTagFailed)
	}
}

func TestTagEditor_AddIgnored(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		open bool
	}{
		{name: "duplicate", tag: "existing", open: true},
		{name: "blank", tag: "   ", open: true},
		{name: "nothing open", tag: "new", open: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, srv, store := newTagFixture(t)
			if !tt.open {
				store.Update(func(v *ViewState) { v.Open = nil })
			}

			sent, err := e.Add(context.Background(), tt.tag)
			if sent || err != nil {
				t.Errorf("Add() = %v, %v, want false, nil", sent, err)
			}
			if n := srv.CountRequests(http.MethodPost, "/tags/a.wav"); n != 0 {
				t.Errorf("POST /tags requests = %d, want 0", n)
			}
		})
	}
}

func TestTagEditor_RemoveUnsupported(t *testing.T) {
	e, _, _ := newTagFixture(t)

	err := e.Remove("existing")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Remove() error = %v, want ErrUnsupported", err)
	}
	if IsReported(err) {
		t.Error("Remove() without an alerter should not mark the error reported")
	}

	var alerts []string
	e.Alerter = AlertFunc(func(m string, err error) { alerts = append(alerts, m) })
	err = e.Remove("existing")
	if !errors.Is(err, ErrUnsupported) || !IsReported(err) {
		t.Errorf("Remove() error = %v, want reported ErrUnsupported", err)
	}
	if len(alerts) != 1 || alerts[0] != tagRemovalUnsupportedMsg {
		t.Errorf("alerts = %q, want one %q", alerts, tagRemovalUnsupportedMsg)
	}
}

func TestDedupeTags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
		{[]string{"A", "a"}, []string{"A", "a"}},
	}
	for _, tt := range tests {
		if got := DedupeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("DedupeTags(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
