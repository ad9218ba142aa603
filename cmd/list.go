package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	processingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recordings",
	Long:  `List the recording history with each row's processing status and tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.History.Refresh(commandContext(cmd)); err != nil {
			return err
		}
		v := app.Store.Snapshot()
		displayHistory(cmd.OutOrStdout(), v.History, v.Pending, "")
		return nil
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recordings",
	Long: `Search titles, summaries and tags on the server.

An empty query lists every recording.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := commandContext(cmd)
		query := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		if strings.TrimSpace(query) == "" {
			if err := app.History.Search(ctx, query); err != nil {
				return err
			}
			displayHistory(out, app.Store.Snapshot().History, nil, "")
			return nil
		}

		type result struct {
			recs []internal.Recording
			err  error
		}
		done := make(chan result, 1)
		app.History.SearchDone = func(_ string, recs []internal.Recording, err error) {
			done <- result{recs, err}
		}
		if err := app.History.Search(ctx, query); err != nil {
			return err
		}

		select {
		case r := <-done:
			if r.err != nil {
				return r.err
			}
			displayHistory(out, r.recs, nil, query)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	},
}

func displayHistory(out io.Writer, recs []internal.Recording, pending []internal.PendingUpload, query string) {
	if len(recs) == 0 && len(pending) == 0 {
		if query != "" {
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 No recordings match %q", query)))
		} else {
			fmt.Fprintln(out, headerStyle.Render("📋 No recordings found"))
		}
		return
	}

	header := fmt.Sprintf("📋 Found %d recording(s)", len(recs))
	if query != "" {
		header = fmt.Sprintf("📋 %d recording(s) match %q", len(recs), query)
	}
	fmt.Fprintln(out, headerStyle.Render(header))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("File")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("Created")+"\t"+titleStyle.Render("Tags")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, p := range pending {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(truncate(p.Name, 24)),
			"Uploading...",
			processingStyle.Render("uploading"),
			dateStyle.Render(p.StartedAt.Format("15:04:05")),
			dateStyle.Render("—"))
	}

	for _, r := range recs {
		title := truncate(r.DisplayTitle(), 50)
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Render(title)

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(truncate(r.Filename, 24)),
			title,
			rowStatus(internal.DeriveRowStatus(r)),
			formatCreated(r.CreatedAt),
			formatTags(r.Tags))
	}

	_ = w.Flush()
	fmt.Fprintln(out)
	if len(recs) > 0 {
		fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the file name (e.g., ")+
			lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(recs[0].Filename)+
			idStyle.Render(") with `meeting-client show <filename>`"))
	}
}

func rowStatus(s internal.RowStatus) string {
	switch s {
	case internal.StatusProcessed:
		return countStyle.Render(s.String())
	case internal.StatusTooShort:
		return dateStyle.Render(s.String())
	default:
		return processingStyle.Render(s.String())
	}
}

func formatCreated(createdAt string) string {
	label := createdLabel(createdAt, time.Now())
	if label == "" {
		return dateStyle.Render("—")
	}
	return dateStyle.Render(label)
}

var createdLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// createdLabel names the day relative to now: today, a weekday within the
// last week, month and day within the year, else the full date.
func createdLabel(createdAt string, now time.Time) string {
	s := internal.FormatCreatedAt(createdAt)
	if s == "" {
		return ""
	}

	var t time.Time
	var err error
	for _, layout := range createdLayouts {
		if t, err = time.ParseInLocation(layout, s, now.Location()); err == nil {
			break
		}
	}
	if err != nil {
		return s
	}

	days := calendarDays(t, now)
	switch {
	case days == 0:
		return "Today " + t.Format("15:04")
	case days > 0 && days < 7:
		return t.Format("Mon 15:04")
	case days > 0 && days < 365:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

// calendarDays counts midnights between from and to
func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.In(from.Location()).Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return dateStyle.Render("—")
	}
	return tagStyle.Render(truncate(strings.Join(tags, ", "), 30))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}
