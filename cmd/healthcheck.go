package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the recording server is reachable",
	Long: `Check the health of the client setup by verifying:
  • Configuration loads
  • GET /status answers
  • GET /devices answers and lists at least one input
  • The notification ledger opens

Useful when the dashboard stays on "Ready" and nothing seems to happen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		fmt.Fprintln(out, sectionStyle.Render("🔍 Meeting Client Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		app, err := newApp()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer app.Close()
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Server: %s\n", app.Client.BaseURL())
			fmt.Fprintf(out, "   State:  %s\n", app.Config.State.DBPath)
		}
		fmt.Fprintln(out)

		// Step 2: Status endpoint
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking GET /status..."))
		statusOK := true
		snap, err := app.Client.Status(ctx)
		if err != nil {
			statusOK = false
			fmt.Fprintln(out, errorStyle.Render("❌ Status endpoint unreachable:"), err)
		} else {
			fmt.Fprintln(out, successStyle.Render("✅ Status endpoint answered"))
			if healthcheckVerbose {
				fmt.Fprintf(out, "   Recording: %v\n", snap.IsRecording)
				fmt.Fprintf(out, "   RMS: %.3f\n", snap.RMS)
			}
		}
		fmt.Fprintln(out)

		// Step 3: Devices endpoint
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking GET /devices..."))
		devicesOK := true
		devices, err := app.Client.Devices(ctx)
		switch {
		case err != nil:
			devicesOK = false
			fmt.Fprintln(out, errorStyle.Render("❌ Devices endpoint unreachable:"), err)
		case len(devices) == 0:
			fmt.Fprintln(out, warningStyle.Render("⚠️  No input devices reported"))
		default:
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d input device(s)", len(devices))))
			if healthcheckVerbose {
				for i, d := range devices {
					if i < 5 {
						fmt.Fprintf(out, "   [%d] %s\n", d.Index, d.Name)
					}
				}
				if len(devices) > 5 {
					fmt.Fprintf(out, "   ... and %d more\n", len(devices)-5)
				}
			}
		}
		fmt.Fprintln(out)

		// Step 4: Ledger
		fmt.Fprintln(out, infoStyle.Render("Step 4: Checking notification ledger..."))
		if app.Ledger != nil {
			fmt.Fprintln(out, successStyle.Render("✅ Ledger available"))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Ledger unavailable, notifications dedupe in memory only"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)

		if statusOK && devicesOK {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Server: %s", app.Client.BaseURL())))
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Devices: %d found", len(devices))))
			return nil
		}

		fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
		fmt.Fprintf(out, "   • Is the recorder running at %s?\n", app.Client.BaseURL())
		fmt.Fprintln(out, "   • Use --server or MEETING_CLIENT_URL to point elsewhere")
		return fmt.Errorf("health check failed: server not reachable")
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
