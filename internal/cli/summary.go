package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/client"
	"github.com/evcraddock/client-visits/internal/visit"
)

func newSummaryCmd() *cobra.Command {
	var (
		opts   client.ListOptions
		recent int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary",
		Long:  "Show visit counts by status, the total value of all products, and the most recent visits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts, recent)
		},
	}

	addListFlags(cmd, &opts)
	cmd.Flags().IntVar(&recent, "recent", 3, "number of recent visits to show")

	return cmd
}

func runSummary(cmd *cobra.Command, opts client.ListOptions, recent int) error {
	if err := validateFormat(); err != nil {
		return err
	}
	if recent < 0 {
		return fmt.Errorf("--recent must not be negative")
	}
	if _, err := visit.ParseStatusFilter(opts.Status); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	s, err := svc.Summary(cmd.Context(), opts, recent)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(out(cmd), s)
	}
	user := svc.User()
	if _, err := fmt.Fprintf(out(cmd), "Welcome back, %s\n\n", user.Name); err != nil {
		return err
	}
	return printSummary(out(cmd), s)
}
