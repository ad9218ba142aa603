package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var (
	uploadNoWait bool
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an audio file for summarization",
	Long: `Upload a local audio file. The server transcribes and summarizes it in the
background; the row shows as processing in 'meeting-client list' until done.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := commandContext(cmd)
		var refreshed <-chan struct{}
		err = internal.ShowProgress(ctx, "Uploading "+filepath.Base(path), func() error {
			var uerr error
			refreshed, uerr = app.Uploader.Upload(ctx, path)
			return uerr
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successStyle.Render("✓ Uploaded "+filepath.Base(path)))
		if uploadNoWait {
			return nil
		}

		select {
		case <-refreshed:
		case <-ctx.Done():
			return ctx.Err()
		}
		v := app.Store.Snapshot()
		displayHistory(out, v.History, v.Pending, "")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadNoWait, "no-wait", false, "Exit without waiting for the history refresh")
}
