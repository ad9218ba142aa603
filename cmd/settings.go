package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	settingsOutput string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change server settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print server settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Settings.Load(commandContext(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			v, ok := s[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting: %s", args[0])
			}
			fmt.Fprintln(out, v)
			return nil
		}
		return writeSettings(out, s, settingsOutput)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change server settings",
	Long: `Change one or more server settings. Values are sent as entered, e.g.

  meeting-client settings set auto_detection=true silence_duration=45`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := commandContext(cmd)
		form, err := app.Settings.OpenSettingsForm(ctx)
		if err != nil {
			return err
		}
		for _, arg := range args {
			k, v, err := internal.ParseAssignment(arg)
			if err != nil {
				form.Cancel()
				return err
			}
			form.Set(k, v)
		}

		out := cmd.OutOrStdout()
		if !form.Dirty() {
			fmt.Fprintln(out, idStyle.Render("No changes"))
			return nil
		}
		if err := form.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✓ Settings saved"))
		return writeSettings(out, form.Values(), "table")
	},
}

func writeSettings(w io.Writer, s internal.Settings, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]string(s)); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, k := range s.Keys() {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", titleStyle.Render(k), s[k])
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", format)
	}
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsGetCmd.Flags().StringVarP(&settingsOutput, "output", "o", "table", "Output format (table, yaml, json)")
}
