package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/meeting-client/internal"
)

func (m Model) View() string {
	top := m.viewTopBar()

	paneHeight := m.height - 6
	if paneHeight < 5 {
		paneHeight = 5
	}

	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(m.listWidth()).
		Height(paneHeight)

	detailBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.detailWidth()).
		Height(paneHeight)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Render(clipLines(m.viewHistory(), paneHeight)),
		detailBorder.Render(clipLines(m.viewDetail(), paneHeight)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, top, panes, m.viewToasts(), m.viewBottomBar())
}

func (m Model) viewTopBar() string {
	v := m.view
	var indicator string
	if v.Recording {
		indicator = recStyle.Render("● REC") + " " + internal.FormatElapsed(v.Elapsed) + " " + pulseMeter(v.Pulse)
	} else {
		indicator = idleStyle.Render("○") + " " + internal.FormatElapsed(0)
	}

	caption := titleStyle.Render(v.Caption)

	device := dimStyle.Render("no device")
	switch {
	case v.DevicesError != "":
		device = errStyle.Render(v.DevicesError)
	default:
		for _, d := range v.Devices {
			if d.Index == v.SelectedDevice {
				device = dimStyle.Render("🎙 " + d.Name)
			}
		}
	}

	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(indicator + "  " + caption + "  " + device)
}

// pulseMeter draws the pulse scale as a short bar
func pulseMeter(p internal.Pulse) string {
	filled := int((p.Scale - 1) / 1.5 * 8)
	filled = min(max(filled, 0), 8)
	return recStyle.Render(strings.Repeat("▮", filled)) + dimStyle.Render(strings.Repeat("▯", 8-filled))
}

func (m Model) viewHistory() string {
	var b strings.Builder

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	for _, p := range m.view.Pending {
		fmt.Fprintf(&b, "  %s %s %s\n", m.spinner.View(), truncate(p.Name, m.listWidth()-16), busyStyle.Render("uploading"))
	}

	if len(m.view.History) == 0 && len(m.view.Pending) == 0 {
		if strings.TrimSpace(m.view.SearchQuery) != "" {
			b.WriteString(dimStyle.Render("No matches"))
		} else {
			b.WriteString(dimStyle.Render("No recordings yet"))
		}
		return b.String()
	}

	for i, r := range m.view.History {
		prefix := "  "
		title := truncate(r.DisplayTitle(), m.listWidth()-16)
		if i == m.cursor {
			prefix = cursorStyle.Render("▸ ")
			title = cursorStyle.Render(title)
		}
		if m.view.IsOpen(r.Filename) {
			title += infoStyle.Render(" •")
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, title, rowStatus(internal.DeriveRowStatus(r)))
	}
	return b.String()
}

func rowStatus(s internal.RowStatus) string {
	switch s {
	case internal.StatusProcessed:
		return okStyle.Render("✓")
	case internal.StatusTooShort:
		return dimStyle.Render("short")
	default:
		return busyStyle.Render("…")
	}
}

func (m Model) viewDetail() string {
	open := m.view.Open
	if open == nil {
		return dimStyle.Render("Select a recording and press enter")
	}
	if open.Loading {
		return m.spinner.View() + " Loading " + open.Filename
	}
	if m.view.LoadError != "" || open.Detail == nil {
		return errStyle.Render(internal.LoadErrorMessage)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(open.Detail.DisplayTitle()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(open.Filename))
	if created := internal.FormatCreatedAt(open.Detail.CreatedAt); created != "" {
		b.WriteString(dimStyle.Render(" • " + created))
	}
	b.WriteString("\n")

	if len(open.Tags) > 0 {
		b.WriteString(tagStyle.Render("# " + strings.Join(open.Tags, "  # ")))
	} else {
		b.WriteString(dimStyle.Render("no tags"))
	}
	b.WriteString("\n")
	if m.mode == modeTag {
		b.WriteString(m.tag.View())
		b.WriteString("\n")
	}

	switch {
	case m.summaryErr != nil:
		b.WriteString(open.Detail.SummaryText)
	case m.summary != "":
		b.WriteString(m.summary)
	default:
		b.WriteString("\n" + internal.EmptySummaryText)
	}

	if open.Detail.AudioURL != "" {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render("♪ " + open.Detail.AudioURL))
	}
	return b.String()
}

func (m Model) viewToasts() string {
	if len(m.view.Toasts) == 0 {
		return m.lastMessage
	}
	lines := make([]string, 0, len(m.view.Toasts))
	for _, t := range m.view.Toasts {
		switch t.Type {
		case "error":
			lines = append(lines, errStyle.Render("✗ "+t.Message))
		case "warning":
			lines = append(lines, busyStyle.Render("⚠ "+t.Message))
		default:
			lines = append(lines, infoStyle.Render("ℹ "+t.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewBottomBar() string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)

	switch m.mode {
	case modeSearch:
		return bar.Render("type to search · enter keep · esc clear")
	case modeTag:
		return bar.Render("enter add tag · esc cancel")
	case modeConfirm:
		prompt := internal.ConfirmDelete
		if m.confirm == confirmClear {
			prompt = internal.ConfirmClearAll
		}
		return busyStyle.Padding(0, 1).Render(prompt + " [y/N]")
	}

	return bar.Render("s start · x stop · m mic · / search · ↑↓/jk move · enter open · esc close · y copy · a tag · d delete · C clear all · r refresh · q quit")
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
