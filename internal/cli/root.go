// Package cli defines the cobra command tree for client-visits.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/config"
	"github.com/evcraddock/client-visits/internal/logging"
)

var (
	flagFormat string
	flagDB     string
	flagServer string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cv",
		Short:         "Log client visits",
		Long:          "A tool for marketing staff to record client visits, the products discussed and their negotiated rates, and to submit and review them from the CLI or over the API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(""); err != nil {
				return err
			}
			logging.SetupCLI(config.FromEnv().DevMode)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/cv/visits.db)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "API server URL (default: local store)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newShowCmd(),
		newEditCmd(),
		newSubmitCmd(),
		newSummaryCmd(),
		newExportCmd(),
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// loadAppConfig reads process configuration and applies the global flags.
func loadAppConfig() (config.Config, error) {
	cfg := config.FromEnv()
	if flagDB != "" {
		cfg.Storage.DBPath = flagDB
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

func validateFormat() error {
	switch flagFormat {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid --format %q (use text or json)", flagFormat)
	}
}

// out returns where a command writes its results.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
