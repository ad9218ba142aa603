package internal

import (
	"testing"
	"time"
)

// CreateTestRecording creates a history row with sample data
func CreateTestRecording(filename, summary string) *Recording {
	return &Recording{
		Filename:    filename,
		Title:       "Meeting " + filename,
		CreatedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC).Format("2006-01-02T15:04:05"),
		Duration:    125,
		Tags:        []string{},
		SummaryText: summary,
	}
}

// CreateTestDetail creates a meeting detail with custom summary and tags
func CreateTestDetail(filename, summary string, tags []string) *MeetingDetail {
	rec := CreateTestRecording(filename, summary)
	if tags != nil {
		rec.Tags = append([]string(nil), tags...)
	}
	return &MeetingDetail{Recording: *rec}
}

// NewTestClient creates a client for a test server URL
func NewTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}
