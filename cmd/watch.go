package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/meeting-client/internal"
	"github.com/iksnae/meeting-client/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	watchLogFile string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live dashboard",
	Long: `Open a live dashboard that polls the recorder status and history.

Keys: s start · x stop · m next microphone · / search · enter open · y copy summary ·
a tag · d delete · C clear all · r refresh · esc close · q quit

Log output goes to a file while the dashboard is open (see --log-file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		logPath := watchLogFile
		if logPath == "" {
			logPath = filepath.Join(filepath.Dir(app.Config.State.DBPath), "watch.log")
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()

		internal.SetLogOutput(logFile)
		defer internal.SetLogOutput(os.Stderr)
		internal.LogInfo("Dashboard started against %s", app.Client.BaseURL())

		return dashboard.Run(commandContext(cmd), app)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "Write logs here while the dashboard runs (default: watch.log next to the state db)")
}
