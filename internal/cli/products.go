package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evcraddock/client-visits/internal/visit"
)

// parseProduct parses a --product value of the form "name:rate[:remarks]".
func parseProduct(s string) (visit.ProductInput, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return visit.ProductInput{}, fmt.Errorf("invalid product %q (use name:rate[:remarks])", s)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return visit.ProductInput{}, fmt.Errorf("invalid product %q: name is empty", s)
	}

	rateStr := strings.ReplaceAll(strings.TrimSpace(parts[1]), ",", "")
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return visit.ProductInput{}, fmt.Errorf("invalid product %q: rate must be a number", s)
	}

	p := visit.ProductInput{Name: name, FinalizedRate: rate}
	if len(parts) == 3 {
		p.Remarks = strings.TrimSpace(parts[2])
	}
	return p, nil
}

func parseProducts(values []string) ([]visit.ProductInput, error) {
	products := make([]visit.ProductInput, 0, len(values))
	for _, v := range values {
		p, err := parseProduct(v)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
