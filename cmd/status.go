package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var (
	recordingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorder status",
	Long:  `Poll the server once and print the recording indicator, timer, input level and caption.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Status.PollOnce(commandContext(cmd)); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderStatus(app.Store.Snapshot()))
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, internal.ActionStart)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, internal.ActionStop)
	},
}

func runControl(cmd *cobra.Command, action string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	status, err := app.Devices.Control(commandContext(cmd), action)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("✓ "+status))
	fmt.Fprint(out, renderStatus(app.Store.Snapshot()))
	return nil
}

// renderStatus prints the indicator block for a snapshot
func renderStatus(v internal.ViewState) string {
	var b strings.Builder

	if v.Recording {
		fmt.Fprintf(&b, "%s %s\n", recordingStyle.Render("● REC"), internal.FormatElapsed(v.Elapsed))
		fmt.Fprintf(&b, "  Level: %s\n", levelBar(v.Pulse))
	} else {
		fmt.Fprintf(&b, "%s %s\n", idleStyle.Render("○ idle"), internal.FormatElapsed(0))
	}
	fmt.Fprintf(&b, "  %s\n", captionStyle.Render(v.Caption))

	for _, t := range v.Toasts {
		fmt.Fprintf(&b, "  %s\n", toastLine(t))
	}
	return b.String()
}

// levelBar draws the pulse scale as a ten cell meter
func levelBar(p internal.Pulse) string {
	// Scale runs from 1 to 2.5
	filled := int((p.Scale - 1) / 1.5 * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return fmt.Sprintf("%s%s %.2f",
		recordingStyle.Render(strings.Repeat("█", filled)),
		idleStyle.Render(strings.Repeat("░", 10-filled)),
		p.Opacity)
}

func toastLine(t internal.Toast) string {
	switch t.Type {
	case "error":
		return errorStyle.Render("✗ " + t.Message)
	case "warning":
		return warningStyle.Render("⚠ " + t.Message)
	default:
		return infoStyle.Render("ℹ " + t.Message)
	}
}

// commandContext returns the command's context, falling back to Background
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
}
