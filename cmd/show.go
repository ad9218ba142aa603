package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var (
	showWidth int
	showRaw   bool
)

var (
	// Styles for show command
	meetingHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	meetingMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Show a meeting summary",
	Long: `Load a recording and render its summary, tags and audio link.

Use 'meeting-client list' to see available file names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		detail, err := app.Meetings.Load(commandContext(cmd), args[0])
		if err != nil {
			if internal.IsNotFound(err) {
				return fmt.Errorf("recording not found: %s", args[0])
			}
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(internal.LoadErrorMessage))
			return err
		}

		return displayMeeting(cmd.OutOrStdout(), detail, showWidth, showRaw)
	},
}

func displayMeeting(out io.Writer, d *internal.MeetingDetail, width int, raw bool) error {
	fmt.Fprintln(out, meetingHeaderStyle.Render("🎙 "+d.DisplayTitle()))

	metaParts := []string{d.Filename}
	if created := internal.FormatCreatedAt(d.CreatedAt); created != "" {
		metaParts = append(metaParts, "Created: "+created)
	}
	if d.Duration > 0 {
		metaParts = append(metaParts, "Duration: "+(time.Duration(d.Duration)*time.Second).String())
	}
	metaParts = append(metaParts, "Status: "+internal.DeriveRowStatus(d.Recording).String())
	fmt.Fprintln(out, meetingMetaStyle.Render(strings.Join(metaParts, " • ")))

	if len(d.Tags) > 0 {
		fmt.Fprintln(out, "Tags: "+tagStyle.Render(strings.Join(d.Tags, ", ")))
	} else {
		fmt.Fprintln(out, "Tags: "+dateStyle.Render("none"))
	}
	fmt.Fprintln(out)

	if raw {
		summary := d.SummaryText
		if strings.TrimSpace(summary) == "" {
			summary = internal.EmptySummaryText
		}
		fmt.Fprintln(out, summary)
	} else {
		rendered, err := internal.RenderSummary(d.SummaryText, width)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
	}

	if d.AudioURL != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Audio: "+linkStyle.Render(d.AudioURL))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 80, "Wrap the summary at this width")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the summary markdown without rendering")
}
