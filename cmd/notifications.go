package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	notificationsClear bool
	notificationsLimit int
)

// notificationsCmd represents the notifications command
var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications already shown",
	Long: `List the server notifications this client has already delivered.

Delivered notifications are not shown again, even by a new process. --clear
forgets them, so the current one is shown once more on the next poll.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Ledger == nil {
			return fmt.Errorf("notification ledger unavailable at %s", app.Config.State.DBPath)
		}

		out := cmd.OutOrStdout()
		if notificationsClear {
			n, err := app.Ledger.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Cleared %d notification(s)", n)))
			return nil
		}

		entries, err := app.Ledger.Recent(notificationsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, headerStyle.Render("🔔 No notifications delivered"))
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🔔 %d notification(s)", len(entries))))
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, e := range entries {
			typ := e.Type
			if typ == "" {
				typ = "info"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				dateStyle.Render(e.DeliveredAt.Local().Format("2006-01-02 15:04:05")),
				typ,
				e.Message,
				idStyle.Render(string(e.ID)))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.Flags().BoolVar(&notificationsClear, "clear", false, "Forget every delivered notification")
	notificationsCmd.Flags().IntVarP(&notificationsLimit, "limit", "n", 20, "Number of entries to show")
}
