package cmd

import (
	"fmt"

	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var (
	deleteYes bool
	clearYes  bool
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Delete a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ok, err := app.History.Delete(commandContext(cmd), args[0], confirmer(cmd, deleteYes))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), idStyle.Render("Cancelled"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Deleted "+args[0]))
		return nil
	},
}

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ok, err := app.History.ClearAll(commandContext(cmd), confirmer(cmd, clearYes))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), idStyle.Render("Cancelled"))
			return nil
		}
		remaining := len(app.Store.Snapshot().History)
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ History cleared"))
		if remaining > 0 {
			internal.LogWarn("Server still lists %d recording(s) after clear", remaining)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
}
