package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/meeting-client/internal"
)

// JSONExporter exports meetings in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a meeting to JSON format
func (e *JSONExporter) Export(detail *internal.MeetingDetail, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(newDocument(detail))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
