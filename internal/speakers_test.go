package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"github.com/iksnae/meeting-client/testutil"
)

const speakerSummary = `# Weekly sync

## 🗣️ Speakers
*   Alice: Product lead, ran the meeting
*   **Bob**: Backend engineer
- Carol:   QA
*   not a speaker line

## 📝 Summary
*   Decision: ship on Friday
`

func TestParseSpeakers(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []Speaker
	}{
		{
			name:     "emoji heading",
			markdown: speakerSummary,
			want: []Speaker{
				{Name: "Alice", Description: "Product lead, ran the meeting"},
				{Name: "Bob", Description: "Backend engineer"},
				{Name: "Carol", Description: "QA"},
			},
		},
		{
			name:     "plain heading at end of text",
			markdown: "## Speakers\n* Dana: host",
			want:     []Speaker{{Name: "Dana", Description: "host"}},
		},
		{
			name:     "empty description",
			markdown: "## Speakers\n* Eve:",
			want:     []Speaker{{Name: "Eve", Description: ""}},
		},
		{
			name:     "no heading",
			markdown: "## Summary\n* Alice: not in a speakers section",
			want:     []Speaker{},
		},
		{
			name:     "level three heading ignored",
			markdown: "### Speakers\n* Alice: x",
			want:     []Speaker{},
		},
		{
			name:     "empty",
			markdown: "",
			want:     []Speaker{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSpeakers(tt.markdown); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSpeakers() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSpeakerArg(t *testing.T) {
	s, err := ParseSpeakerArg("Alice: host")
	if err != nil || s != (Speaker{Name: "Alice", Description: "host"}) {
		t.Errorf("ParseSpeakerArg() = %+v, %v", s, err)
	}
	if _, err := ParseSpeakerArg(" : nobody"); err == nil {
		t.Error("ParseSpeakerArg with blank name error = nil, want error")
	}
}

func TestSpeakerEditor_Rows(t *testing.T) {
	e := NewSpeakerEditor(nil, nil, nil, speakerSummary)
	if len(e.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(e.Rows))
	}

	e.AddRow()
	if err := e.SetRow(3, Speaker{Name: "Dan", Description: "guest"}); err != nil {
		t.Fatalf("SetRow() error = %v", err)
	}
	if err := e.RemoveRow(0); err != nil {
		t.Fatalf("RemoveRow() error = %v", err)
	}
	e.AddRow()

	if err := e.RemoveRow(10); err == nil {
		t.Error("RemoveRow(10) error = nil, want error")
	}

	got := e.Speakers()
	want := []Speaker{
		{Name: "Bob", Description: "Backend engineer"},
		{Name: "Carol", Description: "QA"},
		{Name: "Dan", Description: "guest"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Speakers() = %+v, want %+v", got, want)
	}
}

func TestSpeakerEditor_Save(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddRecording(testutil.FakeRecording{Filename: "a.wav", SummaryText: speakerSummary})

	client := NewTestClient(t, srv.URL)
	store := NewStore()
	loader := NewMeetingLoader(client, store)
	e := NewSpeakerEditor(client, loader, nil, speakerSummary)
	e.Rows = []Speaker{{Name: "Zed", Description: "notes"}, {Name: "  ", Description: "dropped"}}

	if err := e.Save(context.Background(), "a.wav"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reqs := srv.Requests(http.MethodPost, "/meeting/a.wav/speakers")
	if len(reqs) != 1 {
		t.Fatalf("POST speakers requests = %d, want 1", len(reqs))
	}
	var body struct {
		Speakers []Speaker `json:"speakers"`
	}
	if err := json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if !reflect.DeepEqual(body.Speakers, []Speaker{{Name: "Zed", Description: "notes"}}) {
		t.Errorf("sent speakers = %+v", body.Speakers)
	}

	if !store.Snapshot().IsOpen("a.wav") {
		t.Error("meeting not reloaded after save")
	}
	if !reflect.DeepEqual(e.Rows, []Speaker{{Name: "Zed", Description: "notes"}}) {
		t.Errorf("Rows after reload = %+v", e.Rows)
	}
}

func TestSpeakerEditor_SaveFailure(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Fail(http.MethodPost, "/meeting/a.wav/speakers", http.StatusInternalServerError)

	var alerted string
	e := NewSpeakerEditor(NewTestClient(t, srv.URL), nil, AlertFunc(func(m string, err error) { alerted = m }), "")
	e.Rows = []Speaker{{Name: "Zed"}}

	if err := e.Save(context.Background(), "a.wav"); err == nil {
		t.Fatal("Save() error = nil, want error")
	}
	if alerted != AlertSpeakersSaveFailed {
		t.Errorf("alert = %q, want %q", alerted, AlertSpeakersSaveFailed)
	}
}
