package visit

import (
	"errors"
	"strings"
	"testing"
)

func validForm() Form {
	return Form{
		ClientName:       " Acme ",
		BusinessLocation: "NYC",
		Date:             "2024-01-15",
		Products: []ProductInput{
			{Name: "Widget", FinalizedRate: 100},
		},
	}
}

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Form)
		fields []string
	}{
		{"valid", func(*Form) {}, nil},
		{"blank client", func(f *Form) { f.ClientName = "   " }, []string{"clientName"}},
		{"missing location", func(f *Form) { f.BusinessLocation = "" }, []string{"businessLocation"}},
		{"missing date", func(f *Form) { f.Date = "" }, []string{"date"}},
		{"bad date", func(f *Form) { f.Date = "15/01/2024" }, []string{"date"}},
		{"no products", func(f *Form) { f.Products = nil }, []string{"products"}},
		{"unnamed product", func(f *Form) { f.Products[0].Name = " " }, []string{"products"}},
		{"zero rate", func(f *Form) { f.Products[0].FinalizedRate = 0 }, []string{"products"}},
		{
			"negative rate next to a valid one",
			func(f *Form) {
				f.Products = append(f.Products, ProductInput{Name: "Refund", FinalizedRate: -5})
			},
			[]string{"products[1].finalizedRate"},
		},
		{
			"several problems",
			func(f *Form) { f.ClientName = ""; f.Date = "soon" },
			[]string{"clientName", "date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)

			err := f.Validate()
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var fe *FormError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FormError", err)
			}
			if len(fe.Fields) != len(tt.fields) {
				t.Errorf("fields = %v, want %v", fe.Fields, tt.fields)
			}
			for _, name := range tt.fields {
				if _, ok := fe.Fields[name]; !ok {
					t.Errorf("missing error for %q in %v", name, fe.Fields)
				}
			}
		})
	}
}

func TestFormErrorMessage(t *testing.T) {
	fe := &FormError{Fields: map[string]string{
		"date":       "is required",
		"clientName": "is required",
	}}
	want := "invalid visit: clientName is required; date is required"
	if got := fe.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFormDraft(t *testing.T) {
	f := validForm()
	f.Products = append(f.Products,
		ProductInput{Name: "", FinalizedRate: 0},
		ProductInput{Name: " Gadget ", FinalizedRate: 12.5, Remarks: " trial "},
	)

	v, err := f.Draft("1", "John Doe", Submitted)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if v.ClientName != "Acme" {
		t.Errorf("client name = %q, want trimmed Acme", v.ClientName)
	}
	if v.MarketingPersonID != "1" || v.MarketingPersonName != "John Doe" {
		t.Errorf("attribution = %q/%q", v.MarketingPersonID, v.MarketingPersonName)
	}
	if v.Status != Submitted {
		t.Errorf("status = %q, want submitted", v.Status)
	}
	if len(v.Products) != 2 {
		t.Fatalf("got %d products, want 2 (unnamed one dropped)", len(v.Products))
	}
	if p := v.Products[1]; p.Name != "Gadget" || p.Remarks != "trial" || p.FinalizedRate != 12.5 {
		t.Errorf("second product = %+v", p)
	}
}

func TestFormDraftInvalid(t *testing.T) {
	f := validForm()
	f.Products = nil

	_, err := f.Draft("1", "John Doe", Draft)
	if err == nil || !strings.Contains(err.Error(), "products") {
		t.Fatalf("err = %v, want products error", err)
	}
}
