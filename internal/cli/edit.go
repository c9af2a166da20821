package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/visit"
)

func newEditCmd() *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a visit",
		Long: `Change the fields of a visit. Only the flags given are changed. Giving
--product replaces the whole product list.`,
		Example: `  cv edit 0190f1c2-... --location Boston
  cv edit 0190f1c2-... --product "Widget:120" --product "Gadget:40"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := editPatch(cmd, opts)
			if err != nil {
				return err
			}
			return runEdit(cmd, args[0], patch)
		},
	}

	cmd.Flags().StringVar(&opts.client, "client", "", "client name")
	cmd.Flags().StringVar(&opts.location, "location", "", "business location")
	cmd.Flags().StringVar(&opts.date, "date", "", "visit date YYYY-MM-DD")
	cmd.Flags().StringArrayVar(&opts.products, "product", nil, "product as name:rate[:remarks] (repeatable, replaces all products)")

	return cmd
}

// editPatch builds a patch from the flags that were set.
func editPatch(cmd *cobra.Command, opts addOptions) (visit.Patch, error) {
	var patch visit.Patch
	flags := cmd.Flags()

	if flags.Changed("client") {
		patch.ClientName = &opts.client
	}
	if flags.Changed("location") {
		patch.BusinessLocation = &opts.location
	}
	if flags.Changed("date") {
		patch.Date = &opts.date
	}
	if flags.Changed("product") {
		inputs, err := parseProducts(opts.products)
		if err != nil {
			return visit.Patch{}, err
		}
		products := make([]visit.Product, len(inputs))
		for i, p := range inputs {
			products[i] = visit.Product{Name: p.Name, FinalizedRate: p.FinalizedRate, Remarks: p.Remarks}
		}
		patch.Products = &products
	}

	if patch.IsEmpty() {
		return visit.Patch{}, fmt.Errorf("nothing to change (use --client, --location, --date or --product)")
	}
	return patch, nil
}

func runEdit(cmd *cobra.Command, id string, patch visit.Patch) error {
	if err := validateFormat(); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	v, err := svc.Update(cmd.Context(), id, patch)
	if err != nil {
		return describeError(err)
	}

	if isJSON() {
		return printJSON(out(cmd), v)
	}
	if _, err := fmt.Fprint(out(cmd), "✓ Visit updated.\n\n"); err != nil {
		return err
	}
	return printVisitDetail(out(cmd), v)
}
