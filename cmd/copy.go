package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

// writeClipboard is swapped out in tests
var writeClipboard = clipboard.WriteAll

// copyCmd represents the copy command
var copyCmd = &cobra.Command{
	Use:   "copy <filename>",
	Short: "Copy a meeting summary to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.Meetings.Load(commandContext(cmd), args[0]); err != nil {
			if internal.IsNotFound(err) {
				return fmt.Errorf("recording not found: %s", args[0])
			}
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(internal.LoadErrorMessage))
			return err
		}

		app.Copier.WriteAll = writeClipboard
		if err := app.Copier.CopyOpen(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ "+internal.CopiedMessage))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
