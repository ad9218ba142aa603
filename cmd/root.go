package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/iksnae/meeting-client/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	serverURL  string
	configPath string
	version    = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meeting-client",
	Short: "Terminal client for the meeting recorder",
	Long: `meeting-client talks to a local meeting recording server.

It starts and stops recordings, browses and searches the recording history,
renders meeting summaries, edits tags, speakers and settings, and runs a live
dashboard with 'meeting-client watch'.`,
	Version:       version,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err unless an Alerter has already shown it
func printError(w io.Writer, err error) {
	if internal.IsReported(err) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (overrides config and "+internal.EnvServerURL+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.meeting-client/config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
}

// loadConfig reads the config file and applies the --server override
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --server: %w", err)
		}
	}
	return cfg, nil
}

// newApp builds the client for a one-shot command. Callers must Close it.
func newApp() (*internal.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	app, err := internal.NewApp(cfg, internal.StderrAlerter{})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return app, nil
}

// confirmer prompts on stdin unless --yes was given
func confirmer(cmd *cobra.Command, yes bool) internal.Confirmer {
	if yes {
		return internal.AlwaysConfirm
	}
	return internal.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
}
