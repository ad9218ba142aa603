package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var speakersCmd = &cobra.Command{
	Use:   "speakers",
	Short: "List or edit the speakers of a meeting",
}

var speakersListCmd = &cobra.Command{
	Use:   "list <filename>",
	Short: "List speakers found in the summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		detail, err := app.Meetings.Load(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		displaySpeakers(cmd.OutOrStdout(), internal.ParseSpeakers(detail.SummaryText))
		return nil
	},
}

var speakersSetCmd = &cobra.Command{
	Use:   `set <filename> "Name: description"...`,
	Short: "Replace the speaker list",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSpeakers(cmd, args[0], func(e *internal.SpeakerEditor) error {
			e.Rows = nil
			return appendSpeakers(e, args[1:])
		})
	},
}

var speakersAddCmd = &cobra.Command{
	Use:   `add <filename> "Name: description"...`,
	Short: "Add speakers to the existing list",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSpeakers(cmd, args[0], func(e *internal.SpeakerEditor) error {
			return appendSpeakers(e, args[1:])
		})
	},
}

var speakersRmCmd = &cobra.Command{
	Use:     "rm <filename> <name>",
	Aliases: []string{"remove"},
	Short:   "Remove a speaker by name",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args[1:], " ")
		return editSpeakers(cmd, args[0], func(e *internal.SpeakerEditor) error {
			for i, r := range e.Rows {
				if strings.EqualFold(r.Name, name) {
					return e.RemoveRow(i)
				}
			}
			return fmt.Errorf("speaker not found: %s", name)
		})
	},
}

// editSpeakers loads filename, applies edit to its rows and saves them
func editSpeakers(cmd *cobra.Command, filename string, edit func(*internal.SpeakerEditor) error) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := commandContext(cmd)
	detail, err := app.Meetings.Load(ctx, filename)
	if err != nil {
		return err
	}

	editor := app.Speakers(internal.StderrAlerter{}, detail.SummaryText)
	if err := edit(editor); err != nil {
		return err
	}
	if err := editor.Save(ctx, filename); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("✓ Speakers saved"))
	displaySpeakers(out, editor.Rows)
	return nil
}

func appendSpeakers(e *internal.SpeakerEditor, args []string) error {
	for _, arg := range args {
		s, err := internal.ParseSpeakerArg(arg)
		if err != nil {
			return err
		}
		e.AddRow()
		if err := e.SetRow(len(e.Rows)-1, s); err != nil {
			return err
		}
	}
	return nil
}

func displaySpeakers(out io.Writer, speakers []internal.Speaker) {
	if len(speakers) == 0 {
		fmt.Fprintln(out, headerStyle.Render("🗣 No speakers found"))
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🗣 %d speaker(s)", len(speakers))))
	for _, s := range speakers {
		if s.Description == "" {
			fmt.Fprintf(out, "  • %s\n", titleStyle.Render(s.Name))
			continue
		}
		fmt.Fprintf(out, "  • %s: %s\n", titleStyle.Render(s.Name), s.Description)
	}
}

func init() {
	rootCmd.AddCommand(speakersCmd)
	speakersCmd.AddCommand(speakersListCmd)
	speakersCmd.AddCommand(speakersSetCmd)
	speakersCmd.AddCommand(speakersAddCmd)
	speakersCmd.AddCommand(speakersRmCmd)
}
