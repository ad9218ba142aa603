package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EmbeddedSummary is the object some servers leave in summary_text when the
// model's JSON answer was stored verbatim.
type EmbeddedSummary struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Title   string   `json:"title"`
}

// DecodeEmbeddedSummary extracts an EmbeddedSummary from text. ok is false
// when the text is not JSON-shaped; err is set when it is but fails to decode.
func DecodeEmbeddedSummary(text string) (*EmbeddedSummary, bool, error) {
	if !LooksLikeJSON(text) {
		return nil, false, nil
	}

	body := stripJSONFence(strings.TrimSpace(text))
	var es EmbeddedSummary
	if err := json.Unmarshal([]byte(body), &es); err != nil {
		return nil, true, fmt.Errorf("failed to decode embedded summary: %w", err)
	}
	return &es, true, nil
}

func stripJSONFence(text string) string {
	if !strings.HasPrefix(text, "```json") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// NormalizeSummary replaces a JSON-shaped summary with its embedded fields.
// Non-empty embedded values win over the outer record. Text that cannot be
// decoded is kept as is.
func NormalizeSummary(d *MeetingDetail) {
	if d == nil {
		return
	}

	es, ok, err := DecodeEmbeddedSummary(d.SummaryText)
	if !ok {
		return
	}
	if err != nil {
		LogWarn("Summary for %s looks like JSON but did not decode: %v", d.Filename, err)
		return
	}

	if es.Summary != "" {
		d.SummaryText = es.Summary
	}
	if es.Title != "" {
		d.Title = es.Title
	}
	if len(es.Tags) > 0 {
		d.Tags = DedupeTags(es.Tags)
	}
}
