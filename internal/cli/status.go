package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/auth"
	"github.com/evcraddock/client-visits/internal/blob"
	"github.com/evcraddock/client-visits/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check storage, connection and login status",
		Long:  "Shows where visits are stored (local storage or a server) and whether the stored credentials are valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	w := out(cmd)
	serverURL := getServerURL()
	email, password := getCredentials()

	if serverURL == "" {
		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Storage: %s\n", describeStorage(cfg.Storage)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Scoping: %s\n", onOff(cfg.Scoping)); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "Server:  %s\n", serverURL); err != nil {
		return err
	}

	if email == "" {
		_, err := fmt.Fprintln(w, "User:    not logged in\n\nRun 'cv login' to authenticate.")
		return err
	}

	if serverURL == "" {
		user, err := auth.DemoDirectory().Authenticate(email, password)
		return printLoginStatus(w, email, user, err)
	}

	me, err := client.New(serverURL, email, password).Me(cmd.Context())
	var apiErr *client.APIError
	switch {
	case err == nil:
		return printLoginStatus(w, email, &me.User, nil)
	case errors.As(err, &apiErr):
		return printLoginStatus(w, email, nil, err)
	default:
		_, werr := fmt.Fprintf(w, "Status:  ✗ cannot reach server (%v)\n", err)
		return werr
	}
}

func printLoginStatus(w io.Writer, email string, user *auth.User, err error) error {
	if err != nil {
		_, werr := fmt.Fprintf(w, "User:    %s\nStatus:  ✗ %v\n\nRun 'cv login' to re-authenticate.\n", email, err)
		return werr
	}
	_, werr := fmt.Fprintf(w, "User:    %s <%s> (%s)\nStatus:  ✓ authenticated\n", user.Name, user.Email, user.Role)
	return werr
}

func describeStorage(cfg blob.Config) string {
	switch cfg.Driver {
	case blob.DriverSQLite:
		path := cfg.DBPath
		if path == "" {
			path = "~/.config/cv/visits.db"
		}
		return "sqlite " + path
	case blob.DriverFile:
		return "file " + cfg.DataDir
	case blob.DriverS3:
		return fmt.Sprintf("s3 bucket %s%s", cfg.S3.Bucket, prefixSuffix(cfg.S3.Prefix))
	default:
		return string(cfg.Driver)
	}
}

func prefixSuffix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return " prefix " + prefix
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
