package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	audioOut     string
	audioURLOnly bool
)

// audioCmd represents the audio command
var audioCmd = &cobra.Command{
	Use:   "audio <filename>",
	Short: "Download a recording's audio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		filename := args[0]
		out := cmd.OutOrStdout()
		if audioURLOnly {
			fmt.Fprintln(out, app.Client.AudioURL(filename))
			return nil
		}

		dest := audioOut
		if dest == "" {
			dest = filepath.Base(filename)
		}
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}

		n, err := app.Client.DownloadAudio(commandContext(cmd), filename, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
			return fmt.Errorf("failed to download %s: %w", filename, err)
		}

		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Saved %s (%d bytes)", dest, n)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(audioCmd)
	audioCmd.Flags().StringVarP(&audioOut, "out", "o", "", "Destination file (default: the recording's file name)")
	audioCmd.Flags().BoolVar(&audioURLOnly, "url", false, "Print the audio URL instead of downloading")
}
