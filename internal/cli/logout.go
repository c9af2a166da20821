package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Removes the stored email and password from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(out(cmd))
		},
	}
}

func runLogout(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Email == "" && cfg.Password == "" {
		_, err := fmt.Fprintln(w, "Not logged in.")
		return err
	}

	cfg.Email = ""
	cfg.Password = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, err = fmt.Fprintln(w, "✓ Logged out. Credentials removed.")
	return err
}
