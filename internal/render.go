package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	EmptySummaryText = "No summary available."
	LoadErrorMessage = "Error loading meeting details."

	defaultWrapWidth = 80
)

// RenderSummary renders a markdown summary for the terminal. The dark style
// is used on a TTY and the plain style everywhere else.
func RenderSummary(markdown string, width int) (string, error) {
	style := "notty"
	if isTerminal(os.Stdout) {
		style = "dark"
	}
	return RenderSummaryWithStyle(markdown, width, style)
}

// RenderSummaryWithStyle renders markdown with a named glamour style
func RenderSummaryWithStyle(markdown string, width int, style string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		markdown = EmptySummaryText
	}
	if width <= 0 {
		width = defaultWrapWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}
