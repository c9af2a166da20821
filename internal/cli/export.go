package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/client"
	"github.com/evcraddock/client-visits/internal/visit"
)

func newExportCmd() *cobra.Command {
	var (
		opts   client.ListOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export visits to a spreadsheet",
		Long:  "Write visits to an .xlsx workbook with a Visits sheet and a Products sheet. Use --output - to write to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, output)
		},
	}

	addListFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "client-visits.xlsx", "output file")

	return cmd
}

func runExport(cmd *cobra.Command, opts client.ListOptions, output string) (err error) {
	if _, err := visit.ParseStatusFilter(opts.Status); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	if output == "-" {
		return svc.Export(cmd.Context(), opts, out(cmd))
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", output, cerr)
		}
	}()

	if err := svc.Export(cmd.Context(), opts, f); err != nil {
		return fmt.Errorf("exporting visits: %w", err)
	}

	_, err = fmt.Fprintf(out(cmd), "✓ Exported to %s\n", output)
	return err
}
