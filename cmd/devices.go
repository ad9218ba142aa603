package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	selectDevice int
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List input devices or select one",
	Long: `List the audio input devices known to the server.

With --select N the device with index N becomes the recording microphone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()

		if cmd.Flags().Changed("select") {
			if err := app.Devices.SelectDevice(ctx, selectDevice); err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Selected device %d", selectDevice)))
			return nil
		}

		devices, err := app.Client.Devices(ctx)
		if err != nil {
			return fmt.Errorf("failed to load devices: %w", err)
		}
		if len(devices) == 0 {
			fmt.Fprintln(out, headerStyle.Render("🎙 No input devices found"))
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🎙 Found %d input device(s)", len(devices))))
		for _, d := range devices {
			fmt.Fprintf(out, "  %s  %s\n", idStyle.Render(fmt.Sprintf("[%d]", d.Index)), d.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.Flags().IntVar(&selectDevice, "select", 0, "Select the device with this index")
}
