package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/scoring"
)

// ReadWorkbook parses the first sheet of an xlsx workbook.
func ReadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows)
}

// WriteWorkbook writes the scored table to an xlsx workbook: the input
// columns, per-row fdij and omega_ij, and a summary block with the
// set-wide statistics.
func WriteWorkbook(path string, t *Table, res *scoring.Result) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := append(append([]string{"id"}, RequiredColumns...), "fdij", "omega_ij")
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i, rec := range t.Records {
		row := i + 2
		values := []interface{}{
			rec.ID, rec.X, rec.Y, rec.Z, rec.SL, rec.WI, rec.Dij,
			res.Records[i].FDij, res.Records[i].Omega,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	summary := [][2]interface{}{
		{"sigma_P", res.SigmaP},
		{"sigma_L", res.SigmaL},
		{"mean_omega", res.MeanOmega},
		{"final_score", res.FinalScore},
	}
	base := len(t.Records) + 3
	for i, kv := range summary {
		nameCell, err := excelize.CoordinatesToCellName(1, base+i)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(2, base+i)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, nameCell, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, valueCell, kv[1]); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
