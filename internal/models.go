package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Device represents an audio input device reported by the server
type Device struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
}

// NotificationID accepts both string and numeric ids on the wire
type NotificationID string

// UnmarshalJSON decodes a JSON string or number into a NotificationID
func (id *NotificationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NotificationID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("notification id must be a string or number: %w", err)
	}
	*id = NotificationID(n.String())
	return nil
}

// Notification is a one-shot user message attached to a status payload
type Notification struct {
	ID      NotificationID `json:"id,omitempty"`
	Message string         `json:"message"`
	Type    string         `json:"type,omitempty"` // "info", "warning", "error"
}

// Severe reports whether the notification should override the idle caption
func (n Notification) Severe() bool {
	return n.Type == "warning" || n.Type == "error"
}

// StatusSnapshot is the payload of GET /status
type StatusSnapshot struct {
	Status       string        `json:"status,omitempty"`
	IsRecording  bool          `json:"is_recording"`
	RMS          float64       `json:"rms"`
	Notification *Notification `json:"notification,omitempty"`
}

// Recording is a history row as returned by /history and /search
type Recording struct {
	Filename    string   `json:"filename" yaml:"filename"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Duration    float64  `json:"duration,omitempty" yaml:"duration,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
	SummaryText string   `json:"summary_text" yaml:"summary_text"`
}

// DisplayTitle returns the title, falling back to the filename
func (r Recording) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Filename
}

// MeetingDetail is the payload of GET /meeting/{filename}
type MeetingDetail struct {
	Recording `yaml:",inline"`

	// AudioURL is derived locally from the filename; the server never sends it
	AudioURL string `json:"audio_url,omitempty" yaml:"audio_url,omitempty"`
}

// Speaker is a name/description pair extracted from a summary's Speakers section
type Speaker struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

func (r Recording) clone() Recording {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}

func (d *MeetingDetail) clone() *MeetingDetail {
	if d == nil {
		return nil
	}
	out := *d
	out.Recording = d.Recording.clone()
	return &out
}

// formatRMS renders an rms value for log lines
func formatRMS(rms float64) string {
	return strconv.FormatFloat(rms, 'f', 3, 64)
}
