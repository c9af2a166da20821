package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/visit"
)

type addOptions struct {
	client   string
	location string
	date     string
	products []string
	submit   bool
}

func newAddCmd() *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a client visit",
		Long: `Record a visit to a client. Products are given as name:rate[:remarks] and
the flag can be repeated. The visit is saved as a draft unless --submit is set.`,
		Example: `  cv add --client Acme --location NYC --product "Widget:100"
  cv add --client Acme --location NYC --date 2024-01-15 --product "Widget:100:annual deal" --submit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.client, "client", "", "client name (required)")
	cmd.Flags().StringVar(&opts.location, "location", "", "business location (required)")
	cmd.Flags().StringVar(&opts.date, "date", "", "visit date YYYY-MM-DD (default: today)")
	cmd.Flags().StringArrayVar(&opts.products, "product", nil, "product as name:rate[:remarks] (repeatable)")
	cmd.Flags().BoolVar(&opts.submit, "submit", false, "submit the visit instead of saving a draft")

	return cmd
}

func runAdd(cmd *cobra.Command, opts addOptions) error {
	if err := validateFormat(); err != nil {
		return err
	}

	products, err := parseProducts(opts.products)
	if err != nil {
		return err
	}

	date := opts.date
	if date == "" {
		date = time.Now().Format(visit.DateLayout)
	}

	form := visit.Form{
		ClientName:       opts.client,
		BusinessLocation: opts.location,
		Date:             date,
		Products:         products,
	}
	if err := form.Validate(); err != nil {
		return describeError(err)
	}

	status := visit.Draft
	if opts.submit {
		status = visit.Submitted
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	v, err := svc.Create(cmd.Context(), form, status)
	if err != nil {
		return describeError(fmt.Errorf("saving visit: %w", err))
	}

	if isJSON() {
		return printJSON(out(cmd), v)
	}

	verb := "saved as draft"
	if v.Status == visit.Submitted {
		verb = "submitted"
	}
	if _, err := fmt.Fprintf(out(cmd), "✓ Visit %s.\n\n", verb); err != nil {
		return err
	}
	return printVisitDetail(out(cmd), v)
}
