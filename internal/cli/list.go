package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/client"
	"github.com/evcraddock/client-visits/internal/visit"
)

func newListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visits",
		Long:  "List your recorded visits, optionally filtered by status. With --all, list every user's visits when scoping is off.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	addListFlags(cmd, &opts)

	return cmd
}

// addListFlags registers the filter flags shared by list, summary and export.
func addListFlags(cmd *cobra.Command, opts *client.ListOptions) {
	cmd.Flags().StringVar(&opts.Status, "status", "all", "filter by status (all|draft|submitted)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include other users' visits (ignored when scoping is on)")
}

func runList(cmd *cobra.Command, opts client.ListOptions) error {
	if err := validateFormat(); err != nil {
		return err
	}
	if _, err := visit.ParseStatusFilter(opts.Status); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	visits, err := svc.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(out(cmd), visits)
	}
	return printVisitTable(out(cmd), visits)
}
