package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/meeting-client/internal"
)

// JSONLExporter exports meetings in JSONL format: one meta line, then one line
// per tag, speaker and summary section
type JSONLExporter struct{}

// Export exports a meeting to JSONL format
func (e *JSONLExporter) Export(detail *internal.MeetingDetail, w io.Writer) error {
	enc := json.NewEncoder(w)
	doc := newDocument(detail)

	meta := map[string]interface{}{
		"kind":     "meta",
		"filename": doc.Filename,
		"title":    doc.Title,
		"status":   doc.Status,
	}
	if doc.CreatedAt != "" {
		meta["created_at"] = doc.CreatedAt
	}
	if doc.AudioURL != "" {
		meta["audio_url"] = doc.AudioURL
	}
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("failed to encode meta: %w", err)
	}

	for _, tag := range doc.Tags {
		if err := enc.Encode(map[string]string{"kind": "tag", "tag": tag}); err != nil {
			return fmt.Errorf("failed to encode tag: %w", err)
		}
	}

	for _, s := range doc.Speakers {
		obj := map[string]string{"kind": "speaker", "name": s.Name, "description": s.Description}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode speaker: %w", err)
		}
	}

	for _, s := range splitSections(doc.Summary) {
		obj := map[string]string{"kind": "section", "heading": s.Heading, "body": s.Body}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode section: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
