package export

import (
	"io"

	"github.com/iksnae/meeting-client/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports meetings in YAML format
type YAMLExporter struct{}

// Export exports a meeting to YAML format
func (e *YAMLExporter) Export(detail *internal.MeetingDetail, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(newDocument(detail))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
