package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/scoring"
)

// ReadCSV parses a CSV file laid out like the workbook: constants in the
// second column of rows 2-5, table header on row 7.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRows(rows)
}

// WriteCSV writes the scored table in the same column layout as
// WriteWorkbook.
func WriteCSV(path string, t *Table, res *scoring.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{"id"}, RequiredColumns...), "fdij", "omega_ij")
	if err := w.Write(header); err != nil {
		return err
	}
	for i, rec := range t.Records {
		row := []string{
			rec.ID,
			formatFloat(rec.X), formatFloat(rec.Y), formatFloat(rec.Z),
			formatFloat(rec.SL), formatFloat(rec.WI), formatFloat(rec.Dij),
			formatFloat(res.Records[i].FDij), formatFloat(res.Records[i].Omega),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := [][2]string{
		{"sigma_P", formatFloat(res.SigmaP)},
		{"sigma_L", formatFloat(res.SigmaL)},
		{"mean_omega", formatFloat(res.MeanOmega)},
		{"final_score", formatFloat(res.FinalScore)},
	}
	if err := w.Write(nil); err != nil {
		return err
	}
	for _, kv := range summary {
		if err := w.Write([]string{kv[0], kv[1]}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
