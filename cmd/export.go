package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/meeting-client/internal"
	"github.com/iksnae/meeting-client/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	exportAll bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [filename...]",
	Short: "Export meeting summaries to file",
	Long: `Export meeting details to various formats (jsonl, md, yaml, json).

Name one or more recordings, or pass --all to export the whole history.
Use 'meeting-client list' to see available file names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !exportAll {
			return fmt.Errorf("name at least one recording or pass --all")
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := commandContext(cmd)
		filenames := args
		if exportAll {
			if err := app.History.Refresh(ctx); err != nil {
				return err
			}
			filenames = nil
			for _, r := range app.Store.Snapshot().History {
				filenames = append(filenames, r.Filename)
			}
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d meeting(s) to %s", len(filenames), outputDir), func() error {
			for _, name := range filenames {
				detail, err := app.Meetings.Load(ctx, name)
				if err != nil {
					internal.LogError("Failed to load %s: %v", name, err)
					continue
				}

				path := filepath.Join(outputDir, exportFileName(name, exporter.Extension()))
				file, err := os.Create(path)
				if err != nil {
					internal.LogError("Failed to create file %s: %v", path, err)
					continue
				}

				if err := exporter.Export(detail, file); err != nil {
					_ = file.Close()
					internal.LogError("Failed to export %s: %v", name, err)
					continue
				}

				if err := file.Close(); err != nil {
					internal.LogWarn("Failed to close file %s: %v", path, err)
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Export complete: %d meeting(s) exported to %s", exported, outputDir)))
		if exported < len(filenames) {
			return fmt.Errorf("%d of %d meeting(s) failed to export", len(filenames)-exported, len(filenames))
		}
		return nil
	},
}

// exportFileName swaps the recording's extension for the export format's
func exportFileName(filename, ext string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "meeting"
	}
	return fmt.Sprintf("meeting_%s.%s", base, ext)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every recording in the history")
}
