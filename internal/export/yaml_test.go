package export

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleDetail(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if doc.Title != "Release sync" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Summary != sampleSummary {
		t.Errorf("Summary did not survive YAML encoding:\n%s", doc.Summary)
	}
	if len(doc.Speakers) != 2 || doc.Speakers[1].Description != "Engineer" {
		t.Errorf("Speakers = %+v", doc.Speakers)
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("Extension() = %q, want yaml", got)
	}
}
