package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/client-visits/internal/visit"
)

func readBack(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() {
		if err := f.Close(); err != nil {
			t.Errorf("close workbook: %v", err)
		}
	})
	return f
}

func TestWriteXLSX(t *testing.T) {
	visits := []visit.ClientVisit{
		{
			ID: "v1", ClientName: "Acme", BusinessLocation: "NYC", Date: "2024-01-15",
			MarketingPersonName: "John Doe", Status: visit.Submitted,
			SubmittedAt: "2024-01-15T10:30:00.000Z",
			Products: []visit.Product{
				{ID: "p1", Name: "Widget", FinalizedRate: 100},
				{ID: "p2", Name: "Gadget", FinalizedRate: 50.5, Remarks: "trial"},
			},
		},
		{
			ID: "v2", ClientName: "Globex", BusinessLocation: "Boston", Date: "2024-01-16",
			MarketingPersonName: "John Doe", Status: visit.Draft,
		},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, visits); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readBack(t, &buf)

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Visits" || got[1] != "Products" {
		t.Fatalf("sheets = %v, want [Visits Products]", got)
	}

	rows, err := f.GetRows("Visits")
	if err != nil {
		t.Fatalf("visits rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d visit rows, want 3 (header + 2)", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][8] != "Total Value" {
		t.Errorf("header = %v", rows[0])
	}
	first := rows[1]
	if first[0] != "v1" || first[1] != "Acme" || first[5] != "Submitted" || first[7] != "2" || first[8] != "150.5" {
		t.Errorf("first visit row = %v", first)
	}
	if rows[2][5] != "Draft" {
		t.Errorf("second visit status = %q, want Draft", rows[2][5])
	}

	products, err := f.GetRows("Products")
	if err != nil {
		t.Fatalf("products rows: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("got %d product rows, want 3 (header + 2)", len(products))
	}
	if p := products[2]; p[0] != "v1" || p[3] != "Gadget" || p[4] != "50.5" || p[5] != "trial" {
		t.Errorf("second product row = %v", p)
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readBack(t, &buf)

	for _, sheet := range []string{"Visits", "Products"} {
		rows, err := f.GetRows(sheet)
		if err != nil {
			t.Fatalf("%s rows: %v", sheet, err)
		}
		if len(rows) != 1 {
			t.Errorf("%s has %d rows, want header only", sheet, len(rows))
		}
	}
}
