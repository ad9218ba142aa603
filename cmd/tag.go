package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Edit recording tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <filename> <tag>",
	Short: "Add a tag to a recording",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := commandContext(cmd)
		filename := args[0]
		tag := strings.Join(args[1:], " ")

		if _, err := app.Meetings.Load(ctx, filename); err != nil {
			return err
		}
		sent, err := app.Tags.Add(ctx, tag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !sent {
			fmt.Fprintln(out, idStyle.Render(fmt.Sprintf("%s already tagged %q", filename, strings.TrimSpace(tag))))
			return nil
		}
		v := app.Store.Snapshot()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Tagged %s", filename)))
		if v.Open != nil {
			fmt.Fprintln(out, "Tags: "+formatTags(v.Open.Tags))
		}
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:     "rm <filename> <tag>",
	Aliases: []string{"remove"},
	Short:   "Remove a tag (not supported by the server)",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Tags.Remove(strings.Join(args[1:], " "))
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
}
