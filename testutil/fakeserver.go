package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeRecording is the server-side shape of a history row
type FakeRecording struct {
	Filename    string   `json:"filename"`
	Title       string   `json:"title,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	Duration    float64  `json:"duration,omitempty"`
	Tags        []string `json:"tags"`
	SummaryText string   `json:"summary_text"`
}

// FakeDevice is an audio input device
type FakeDevice struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// FakeNotification is attached to the next status payloads until cleared
type FakeNotification struct {
	ID      interface{} `json:"id,omitempty"`
	Message string      `json:"message"`
	Type    string      `json:"type,omitempty"`
}

// FakeSpeaker is a saved speaker annotation
type FakeSpeaker struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FakeUpload records a received multipart upload
type FakeUpload struct {
	Name string
	Size int
}

// RecordedRequest is a request seen by the fake server
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// FakeServer is an in-memory meeting server for tests
type FakeServer struct {
	*httptest.Server

	mu           sync.Mutex
	recordings   []FakeRecording
	devices      []FakeDevice
	selected     int
	settings     map[string]string
	recording    bool
	rms          float64
	notification *FakeNotification
	speakers     map[string][]FakeSpeaker
	uploads      []FakeUpload
	audio        map[string][]byte
	requests     []RecordedRequest
	failures     map[string]int
	delays       map[string]time.Duration
}

// NewFakeServer starts a fake server that is closed when the test ends
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	f := &FakeServer{
		devices: []FakeDevice{
			{Index: 0, Name: "Built-in Microphone"},
			{Index: 1, Name: "USB Headset"},
		},
		selected: -1,
		settings: map[string]string{
			"min_recording_duration":  "60",
			"delete_short_recordings": "false",
			"compress_recordings":     "true",
			"auto_detection":          "false",
			"vad_threshold":           "0.5",
			"silence_duration":        "30",
		},
		speakers: make(map[string][]FakeSpeaker),
		audio:    make(map[string][]byte),
		failures: make(map[string]int),
		delays:   make(map[string]time.Duration),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", f.handleDevices)
	mux.HandleFunc("POST /config/device", f.handleSelectDevice)
	mux.HandleFunc("POST /control/{action}", f.handleControl)
	mux.HandleFunc("GET /status", f.handleStatus)
	mux.HandleFunc("GET /history", f.handleHistory)
	mux.HandleFunc("DELETE /history", f.handleClear)
	mux.HandleFunc("DELETE /history/{filename}", f.handleDelete)
	mux.HandleFunc("GET /search", f.handleSearch)
	mux.HandleFunc("POST /upload", f.handleUpload)
	mux.HandleFunc("GET /meeting/{filename}", f.handleMeeting)
	mux.HandleFunc("POST /meeting/{filename}/speakers", f.handleSpeakers)
	mux.HandleFunc("GET /audio/{filename}", f.handleAudio)
	mux.HandleFunc("POST /tags/{filename}", f.handleAddTag)
	mux.HandleFunc("GET /settings", f.handleGetSettings)
	mux.HandleFunc("POST /settings", f.handleSaveSettings)

	f.Server = httptest.NewServer(f.intercept(mux))
	t.Cleanup(f.Close)
	return f
}

// intercept records every request and applies configured delays and failures
func (f *FakeServer) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}

		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
		})
		status, fail := f.failures[key]
		delay := f.delays[key]
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			http.Error(w, "injected failure", status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request to method+path answer with status
func (f *FakeServer) Fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// Recover removes an injected failure
func (f *FakeServer) Recover(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, method+" "+path)
}

// Delay holds every request to method+path for d before answering
func (f *FakeServer) Delay(method, path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[method+" "+path] = d
}

// Requests returns the recorded requests matching method and path.
// An empty method or path matches anything.
func (f *FakeServer) Requests(method, path string) []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []RecordedRequest
	for _, r := range f.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

// CountRequests returns how many requests matched method and path
func (f *FakeServer) CountRequests(method, path string) int {
	return len(f.Requests(method, path))
}

// AddRecording appends a recording to the server's history
func (f *FakeServer) AddRecording(rec FakeRecording) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	f.recordings = append(f.recordings, rec)
}

// Recordings returns a copy of the server's history
func (f *FakeServer) Recordings() []FakeRecording {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeRecording, len(f.recordings))
	copy(out, f.recordings)
	return out
}

// SetAudio sets the bytes served for a recording's audio
func (f *FakeServer) SetAudio(filename string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audio[filename] = data
}

// SetStatus sets the recording flag and level reported by /status
func (f *FakeServer) SetStatus(recording bool, rms float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = recording
	f.rms = rms
}

// SetNotification attaches n to subsequent /status responses; nil clears it
func (f *FakeServer) SetNotification(n *FakeNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notification = n
}

// SetDevices replaces the device list
func (f *FakeServer) SetDevices(devices []FakeDevice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = devices
}

// SelectedDevice returns the last device index selected by a client
func (f *FakeServer) SelectedDevice() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Settings returns a copy of the stored settings
func (f *FakeServer) Settings() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.settings))
	for k, v := range f.settings {
		out[k] = v
	}
	return out
}

// Speakers returns the speakers saved for filename
func (f *FakeServer) Speakers(filename string) []FakeSpeaker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeSpeaker(nil), f.speakers[filename]...)
}

// Uploads returns the received uploads
func (f *FakeServer) Uploads() []FakeUpload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeUpload(nil), f.uploads...)
}

// IsRecording reports the server's recording flag
func (f *FakeServer) IsRecording() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording
}

func (f *FakeServer) handleDevices(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	devices := append([]FakeDevice{}, f.devices...)
	f.mu.Unlock()
	writeJSON(w, map[string]interface{}{"devices": devices})
}

func (f *FakeServer) handleSelectDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceIndex *int `json:"device_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DeviceIndex == nil {
		http.Error(w, "device_index required", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.selected = *body.DeviceIndex
	f.mu.Unlock()
	writeJSON(w, map[string]string{"status": "ok"})
}

func (f *FakeServer) handleControl(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch action {
	case "start":
		f.recording = true
		writeJSON(w, map[string]string{"status": "started"})
	case "stop":
		f.recording = false
		f.rms = 0
		writeJSON(w, map[string]string{"status": "stopped"})
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (f *FakeServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := "idle"
	if f.recording {
		status = "recording"
	}
	resp := map[string]interface{}{
		"status":       status,
		"is_recording": f.recording,
		"rms":          f.rms,
	}
	if f.notification != nil {
		resp["notification"] = f.notification
	}
	writeJSON(w, resp)
}

func (f *FakeServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"recordings": f.Recordings()})
}

func (f *FakeServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	results := []FakeRecording{}
	for _, rec := range f.Recordings() {
		if matches(rec, q) {
			results = append(results, rec)
		}
	}
	writeJSON(w, map[string]interface{}{"results": results})
}

func matches(rec FakeRecording, q string) bool {
	if strings.Contains(strings.ToLower(rec.Title), q) || strings.Contains(strings.ToLower(rec.SummaryText), q) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (f *FakeServer) handleClear(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.recordings = nil
	f.mu.Unlock()
	writeJSON(w, map[string]string{"status": "cleared"})
}

func (f *FakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, rec := range f.recordings {
		if rec.Filename == filename {
			f.recordings = append(f.recordings[:i], f.recordings[i+1:]...)
			writeJSON(w, map[string]string{"status": "deleted"})
			return
		}
	}
	http.Error(w, "recording not found", http.StatusNotFound)
}

func (f *FakeServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}

	f.mu.Lock()
	f.uploads = append(f.uploads, FakeUpload{Name: header.Filename, Size: len(data)})
	f.recordings = append(f.recordings, FakeRecording{
		Filename:    header.Filename,
		Title:       header.Filename,
		CreatedAt:   time.Now().Format("2006-01-02T15:04:05"),
		Tags:        []string{},
		SummaryText: "Processing...",
	})
	f.mu.Unlock()
	writeJSON(w, map[string]string{"status": "uploaded"})
}

func (f *FakeServer) handleMeeting(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	for _, rec := range f.Recordings() {
		if rec.Filename == filename {
			writeJSON(w, rec)
			return
		}
	}
	http.Error(w, "meeting not found", http.StatusNotFound)
}

func (f *FakeServer) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	var body struct {
		Speakers []FakeSpeaker `json:"speakers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.speakers[filename] = body.Speakers
	for i, rec := range f.recordings {
		if rec.Filename == filename {
			f.recordings[i].SummaryText = rewriteSpeakers(rec.SummaryText, body.Speakers)
		}
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

// rewriteSpeakers replaces the Speakers section the way the server does
func rewriteSpeakers(summary string, speakers []FakeSpeaker) string {
	var b strings.Builder
	b.WriteString("## 🗣️ Speakers\n")
	for _, s := range speakers {
		fmt.Fprintf(&b, "*   %s: %s\n", s.Name, s.Description)
	}

	lines := strings.Split(summary, "\n")
	var kept []string
	inSection := false
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			inSection = strings.Contains(line, "Speakers")
			if inSection {
				continue
			}
		}
		if !inSection {
			kept = append(kept, line)
		}
	}
	return strings.TrimRight(b.String()+"\n"+strings.Join(kept, "\n"), "\n")
}

func (f *FakeServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	f.mu.Lock()
	data, ok := f.audio[filename]
	f.mu.Unlock()
	if !ok {
		http.Error(w, "audio not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	_, _ = w.Write(data)
}

func (f *FakeServer) handleAddTag(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	var body struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tag == "" {
		http.Error(w, "tag required", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.recordings {
		if rec.Filename == filename {
			for _, t := range rec.Tags {
				if t == body.Tag {
					writeJSON(w, map[string]string{"status": "exists"})
					return
				}
			}
			f.recordings[i].Tags = append(f.recordings[i].Tags, body.Tag)
			writeJSON(w, map[string]string{"status": "added"})
			return
		}
	}
	http.Error(w, "recording not found", http.StatusNotFound)
}

func (f *FakeServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"settings": f.Settings()})
}

func (f *FakeServer) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range body {
		f.settings[k] = v
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
