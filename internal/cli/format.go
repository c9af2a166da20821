package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/evcraddock/client-visits/internal/visit"
)

var printer = message.NewPrinter(language.English)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatMoney formats an amount with two decimals and thousands separators.
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}

// formatRate formats a single product rate.
func formatRate(rate float64) string {
	return formatMoney(decimal.NewFromFloat(rate))
}

// printVisitTable prints a list of visits as a formatted table.
func printVisitTable(w io.Writer, visits []visit.ClientVisit) error {
	if len(visits) == 0 {
		_, err := fmt.Fprintln(w, "No visits found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tDATE\tCLIENT\tLOCATION\tPRODUCTS\tTOTAL\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t----\t------\t--------\t--------\t-----\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	total := decimal.Zero
	for _, v := range visits {
		t := visit.Total(v)
		total = total.Add(t)
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			v.ID, v.Date, truncate(v.ClientName, 30), truncate(v.BusinessLocation, 24),
			len(v.Products), formatMoney(t), v.Status.Label()); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := printer.Fprintf(w, "\nTotal: %d visits, %s\n", len(visits), formatMoney(total))
	return err
}

// printVisitDetail prints one visit with its products.
func printVisitDetail(w io.Writer, v visit.ClientVisit) error {
	lines := []string{
		fmt.Sprintf("Visit %s", v.ID),
		fmt.Sprintf("  Client:    %s", v.ClientName),
		fmt.Sprintf("  Location:  %s", v.BusinessLocation),
		fmt.Sprintf("  Date:      %s", v.Date),
		fmt.Sprintf("  By:        %s", v.MarketingPersonName),
		fmt.Sprintf("  Status:    %s", v.Status.Label()),
	}
	if ts, ok := v.SubmittedTime(); ok {
		lines = append(lines, fmt.Sprintf("  Submitted: %s", ts.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines, fmt.Sprintf("  Total:     %s", formatMoney(visit.Total(v))), "")

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if len(v.Products) == 0 {
		_, err := fmt.Fprintln(w, "No products.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Products (%d):\n", len(v.Products)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range v.Products {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, formatRate(p.FinalizedRate), p.Remarks); err != nil {
			return fmt.Errorf("writing product row: %w", err)
		}
	}
	return tw.Flush()
}

// printSummary prints the dashboard summary.
func printSummary(w io.Writer, s visit.Summary) error {
	if _, err := printer.Fprintf(w, "Total visits:  %d\nSubmitted:     %d\nDrafts:        %d\nTotal value:   %s\n",
		s.Total, s.Submitted, s.Drafts, formatMoney(s.TotalValue)); err != nil {
		return err
	}
	if len(s.Recent) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nRecent visits:"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range s.Recent {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", v.Date, v.ClientName, v.BusinessLocation, v.Status.Label()); err != nil {
			return fmt.Errorf("writing recent row: %w", err)
		}
	}
	return tw.Flush()
}

// describeError expands form errors into one line per field.
func describeError(err error) error {
	var fe *visit.FormError
	if !errors.As(err, &fe) {
		return err
	}
	keys := make([]string, 0, len(fe.Fields))
	for k := range fe.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msg := "invalid visit:"
	for _, k := range keys {
		msg += fmt.Sprintf("\n  %s %s", k, fe.Fields[k])
	}
	return errors.New(msg)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
