// Package export writes visit history to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/client-visits/internal/visit"
)

const (
	visitsSheet   = "Visits"
	productsSheet = "Products"
)

var (
	visitHeader   = []any{"ID", "Client", "Location", "Date", "Marketing Person", "Status", "Submitted At", "Products", "Total Value"}
	productHeader = []any{"Visit ID", "Client", "Date", "Product", "Finalized Rate", "Remarks"}
)

// WriteXLSX writes visits as an .xlsx workbook with one row per visit on
// the Visits sheet and one row per product line on the Products sheet.
func WriteXLSX(w io.Writer, visits []visit.ClientVisit) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", visitsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(productsSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	visitRows := make([][]any, 0, len(visits))
	var productRows [][]any
	for _, v := range visits {
		total, _ := visit.Total(v).Float64()
		visitRows = append(visitRows, []any{
			v.ID, v.ClientName, v.BusinessLocation, v.Date, v.MarketingPersonName,
			v.Status.Label(), v.SubmittedAt, len(v.Products), total,
		})
		for _, p := range v.Products {
			productRows = append(productRows, []any{
				v.ID, v.ClientName, v.Date, p.Name, p.FinalizedRate, p.Remarks,
			})
		}
	}

	if err := writeSheet(f, visitsSheet, visitHeader, visitRows, bold); err != nil {
		return err
	}
	if err := writeSheet(f, productsSheet, productHeader, productRows, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return fmt.Errorf("sizing %s columns: %w", sheet, err)
	}
	return nil
}
