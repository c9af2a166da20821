package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/client-visits/internal/visit"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"zero", "0", "0.00"},
		{"small", "99.9", "99.90"},
		{"thousands", "1234.5", "1,234.50"},
		{"millions", "1000000", "1,000,000.00"},
		{"rounds", "10.005", "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatMoney(decimal.RequireFromString(tt.amount))
			if result != tt.expected {
				t.Errorf("formatMoney(%s) = %q, want %q", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
		{"multibyte", "Café Zürich GmbH", 8, "Café ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestParseProduct(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    visit.ProductInput
		wantErr bool
	}{
		{"name and rate", "Widget:100", visit.ProductInput{Name: "Widget", FinalizedRate: 100}, false},
		{"with remarks", "Widget:99.5:annual deal", visit.ProductInput{Name: "Widget", FinalizedRate: 99.5, Remarks: "annual deal"}, false},
		{"remarks with colon", "Widget:10:ref: 42", visit.ProductInput{Name: "Widget", FinalizedRate: 10, Remarks: "ref: 42"}, false},
		{"thousands separator", " Gadget : 1,250 ", visit.ProductInput{Name: "Gadget", FinalizedRate: 1250}, false},
		{"no rate", "Widget", visit.ProductInput{}, true},
		{"empty name", ":100", visit.ProductInput{}, true},
		{"bad rate", "Widget:lots", visit.ProductInput{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProduct(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseProduct(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProduct(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseProduct(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDescribeError(t *testing.T) {
	form := visit.Form{Date: "2024-01-15"}
	err := describeError(form.Validate())
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "invalid visit:") {
		t.Errorf("message = %q", msg)
	}
	if strings.Index(msg, "businessLocation") > strings.Index(msg, "clientName") {
		t.Errorf("fields not sorted: %q", msg)
	}

	plain := errors.New("boom")
	if describeError(plain) != plain {
		t.Error("non-form errors should pass through")
	}
}

func TestPrintVisitTableEmpty(t *testing.T) {
	var b strings.Builder
	if err := printVisitTable(&b, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "No visits found.\n" {
		t.Errorf("output = %q", b.String())
	}
}
