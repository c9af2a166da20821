package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/auth"
	"github.com/evcraddock/client-visits/internal/client"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store credentials",
		Long: `Check an email and password and store them for later commands. Against a
server (--server or CV_SERVER_URL) the server checks them; otherwise the
built-in demo accounts are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if empty)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if empty)")

	return cmd
}

func runLogin(cmd *cobra.Command, email, password string) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	var err error
	if email == "" {
		if email, err = prompt(reader, out(cmd), "Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(reader, out(cmd), "Password: "); err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	serverURL := getServerURL()
	user, err := verifyLogin(cmd, serverURL, email, password)
	if err != nil {
		return err
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}
	cfg.Email = user.Email
	cfg.Password = password
	if flagServer != "" {
		cfg.ServerURL = serverURL
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, err = fmt.Fprintf(out(cmd), "✓ Logged in as %s (%s).\n", user.Name, user.Role)
	return err
}

func verifyLogin(cmd *cobra.Command, serverURL, email, password string) (*auth.User, error) {
	if serverURL == "" {
		dir := auth.DemoDirectory()
		user, err := dir.Authenticate(email, password)
		if err != nil {
			return nil, fmt.Errorf("%w (local accounts: %s)", err, accountEmails(dir))
		}
		return user, nil
	}

	me, err := client.New(serverURL, email, password).Me(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("logging in to %s: %w", serverURL, err)
	}
	return &me.User, nil
}

func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func accountEmails(dir *auth.Directory) string {
	users := dir.Users()
	emails := make([]string, len(users))
	for i, u := range users {
		emails[i] = u.Email
	}
	return strings.Join(emails, ", ")
}
