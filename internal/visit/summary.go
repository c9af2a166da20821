package visit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StatusFilter selects visits by status in history listings.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterDraft     StatusFilter = "draft"
	FilterSubmitted StatusFilter = "submitted"
)

// ParseStatusFilter parses a filter name. Empty means FilterAll.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterDraft, FilterSubmitted:
		return StatusFilter(s), nil
	default:
		return "", fmt.Errorf("invalid status filter %q (use all, draft, submitted)", s)
	}
}

// FilterStatus returns the visits matching f, preserving order.
func FilterStatus(visits []ClientVisit, f StatusFilter) []ClientVisit {
	if f == FilterAll || f == "" {
		return visits
	}
	out := make([]ClientVisit, 0, len(visits))
	for _, v := range visits {
		if string(v.Status) == string(f) {
			out = append(out, v)
		}
	}
	return out
}

// Total returns the sum of the visit's finalized rates.
func Total(v ClientVisit) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range v.Products {
		sum = sum.Add(decimal.NewFromFloat(p.FinalizedRate))
	}
	return sum
}

// Summary is the dashboard overview of a set of visits.
type Summary struct {
	Total      int             `json:"total"`
	Submitted  int             `json:"submitted"`
	Drafts     int             `json:"drafts"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Recent     []ClientVisit   `json:"recent"`
}

// Summarize counts visits by status, adds up their value, and picks the
// most recently created ones, at most recent of them. Recent runs newest
// first; visits holds them oldest first, so this is not a prefix of visits.
func Summarize(visits []ClientVisit, recent int) Summary {
	s := Summary{Total: len(visits), TotalValue: decimal.Zero, Recent: []ClientVisit{}}
	for _, v := range visits {
		switch v.Status {
		case Submitted:
			s.Submitted++
		case Draft:
			s.Drafts++
		}
		s.TotalValue = s.TotalValue.Add(Total(v))
	}

	for i := len(visits) - 1; i >= 0 && len(s.Recent) < recent; i-- {
		s.Recent = append(s.Recent, visits[i])
	}
	return s
}
