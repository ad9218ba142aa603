package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/meeting-client/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(detail *internal.MeetingDetail, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// document is the structured form shared by the JSON and YAML exporters
type document struct {
	Filename  string             `json:"filename" yaml:"filename"`
	Title     string             `json:"title" yaml:"title"`
	CreatedAt string             `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Duration  float64            `json:"duration,omitempty" yaml:"duration,omitempty"`
	Status    string             `json:"status" yaml:"status"`
	Tags      []string           `json:"tags" yaml:"tags"`
	Speakers  []internal.Speaker `json:"speakers" yaml:"speakers"`
	Summary   string             `json:"summary" yaml:"summary"`
	AudioURL  string             `json:"audio_url,omitempty" yaml:"audio_url,omitempty"`
}

func newDocument(d *internal.MeetingDetail) document {
	tags := internal.DedupeTags(d.Tags)
	return document{
		Filename:  d.Filename,
		Title:     d.DisplayTitle(),
		CreatedAt: internal.FormatCreatedAt(d.CreatedAt),
		Duration:  d.Duration,
		Status:    internal.DeriveRowStatus(d.Recording).String(),
		Tags:      tags,
		Speakers:  internal.ParseSpeakers(d.SummaryText),
		Summary:   d.SummaryText,
		AudioURL:  d.AudioURL,
	}
}

// section is a markdown heading and the text under it
type section struct {
	Heading string
	Body    string
}

// splitSections splits markdown at headings. Text before the first heading
// becomes a section with an empty heading.
func splitSections(markdown string) []section {
	var sections []section
	var cur *section
	var body []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if cur.Heading != "" || cur.Body != "" {
			sections = append(sections, *cur)
		}
	}

	inFence := false
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(line, "#") {
			flush()
			cur = &section{Heading: strings.TrimSpace(strings.TrimLeft(line, "#"))}
			body = nil
			continue
		}
		if cur == nil {
			cur = &section{}
		}
		body = append(body, line)
	}
	flush()
	return sections
}
