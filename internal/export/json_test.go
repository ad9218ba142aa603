package export

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleDetail(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if doc.Title != "Release sync" || doc.Filename != "sync.wav" {
		t.Errorf("doc header = %q / %q", doc.Title, doc.Filename)
	}
	if doc.CreatedAt != "2025-03-14T09:30:00" {
		t.Errorf("CreatedAt = %q, want fractional seconds dropped", doc.CreatedAt)
	}
	if len(doc.Tags) != 2 {
		t.Errorf("Tags = %v, want deduplicated", doc.Tags)
	}
	if len(doc.Speakers) != 2 || doc.Speakers[0].Name != "Alice" {
		t.Errorf("Speakers = %+v", doc.Speakers)
	}
	if doc.Status != "processed" {
		t.Errorf("Status = %q, want processed", doc.Status)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"filename\"")) {
		t.Error("output is not indented")
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	if got := (&JSONExporter{}).Extension(); got != "json" {
		t.Errorf("Extension() = %q, want json", got)
	}
}
