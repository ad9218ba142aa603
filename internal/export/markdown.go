package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/meeting-client/internal"
)

// MarkdownExporter exports meetings in Markdown format
type MarkdownExporter struct{}

// Export exports a meeting to Markdown format
func (e *MarkdownExporter) Export(detail *internal.MeetingDetail, w io.Writer) error {
	doc := newDocument(detail)

	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(doc.Title))

	_, _ = fmt.Fprintf(w, "**File:** %s  \n", doc.Filename)
	if doc.CreatedAt != "" {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", doc.CreatedAt)
	}
	if doc.Duration > 0 {
		_, _ = fmt.Fprintf(w, "**Duration:** %s  \n", formatDuration(doc.Duration))
	}
	_, _ = fmt.Fprintf(w, "**Status:** %s\n\n", doc.Status)

	if len(doc.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "**Tags:** %s\n\n", strings.Join(doc.Tags, ", "))
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	summary := strings.TrimSpace(doc.Summary)
	if summary == "" {
		summary = internal.EmptySummaryText
	}
	_, _ = fmt.Fprintf(w, "%s\n", summary)

	if doc.AudioURL != "" {
		_, _ = fmt.Fprintf(w, "\n---\n\n[Audio](%s)\n", doc.AudioURL)
	}

	return nil
}

// escapeMarkdown escapes emphasis markers in single-line text
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	if total >= 3600 {
		return fmt.Sprintf("%dh%02dm%02ds", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
