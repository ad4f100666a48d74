// Package sheet adapts the spreadsheet workbook layout used for restraint
// input into the in-memory model, and writes scored output workbooks. The
// layout is fixed: Ls/Lx/Ly/Lz live in cells B2..B5 and the restraint table
// header sits on row 7.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
)

const (
	headerRow     = 7 // 1-based spreadsheet row of the table header
	constantsCol  = 1 // zero-based column B
	firstConstRow = 1 // zero-based row of B2
)

// RequiredColumns are the table columns every input must carry.
var RequiredColumns = []string{
	"prot x coor",
	"prot y coor",
	"prot z coor",
	"sl",
	"wi",
	"dij",
}

// Table is the parsed content of one input workbook.
type Table struct {
	Constants restraint.Constants
	Records   restraint.Set
	// Dropped lists 1-based source row numbers skipped because a required
	// cell was blank or non-numeric.
	Dropped []int
}

// parseRows builds a Table from a raw cell grid, shared by the xlsx and
// CSV readers.
func parseRows(rows [][]string) (*Table, error) {
	c, err := parseConstants(rows)
	if err != nil {
		return nil, err
	}

	if len(rows) < headerRow {
		return nil, fmt.Errorf("no table header on row %d", headerRow)
	}
	cols, err := columnIndex(rows[headerRow-1])
	if err != nil {
		return nil, err
	}

	t := &Table{Constants: c}
	for i := headerRow; i < len(rows); i++ {
		rec, ok := parseRecord(rows[i], cols, i+1)
		if !ok {
			if !rowEmpty(rows[i]) {
				t.Dropped = append(t.Dropped, i+1)
			}
			continue
		}
		t.Records = append(t.Records, rec)
	}

	if len(t.Records) == 0 {
		return nil, fmt.Errorf("no valid rows found after cleaning (blank or non-numeric values)")
	}
	return t, nil
}

func parseConstants(rows [][]string) (restraint.Constants, error) {
	names := []string{"Ls", "Lx", "Ly", "Lz"}
	vals := make([]float64, len(names))
	for i, name := range names {
		row := firstConstRow + i
		if len(rows) <= row || len(rows[row]) <= constantsCol {
			return restraint.Constants{}, fmt.Errorf("constant %s missing from cell B%d", name, row+1)
		}
		v, err := parseFloat(rows[row][constantsCol])
		if err != nil {
			return restraint.Constants{}, fmt.Errorf("constant %s in cell B%d: %w", name, row+1, err)
		}
		vals[i] = v
	}
	return restraint.Constants{Ls: vals[0], Lx: vals[1], Ly: vals[2], Lz: vals[3]}, nil
}

// columnIndex maps each required column name to its position in the header.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(RequiredColumns))
	for i, cell := range header {
		idx[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(row []string, cols map[string]int, srcRow int) (restraint.Record, bool) {
	get := func(name string) (float64, bool) {
		i := cols[name]
		if i >= len(row) {
			return 0, false
		}
		v, err := parseFloat(row[i])
		if err != nil {
			return 0, false
		}
		return v, true
	}

	vals := make([]float64, len(RequiredColumns))
	for i, name := range RequiredColumns {
		v, ok := get(name)
		if !ok {
			return restraint.Record{}, false
		}
		vals[i] = v
	}
	return restraint.Record{
		ID:  strconv.Itoa(srcRow),
		X:   vals[0],
		Y:   vals[1],
		Z:   vals[2],
		SL:  vals[3],
		WI:  vals[4],
		Dij: vals[5],
	}, true
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseFloat(s, 64)
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// OutputPath derives the scored-output path from an input path:
// input.xlsx -> input_output.xlsx.
func OutputPath(inputPath, ext string) string {
	base := inputPath
	if i := strings.LastIndex(base, "."); i > strings.LastIndexAny(base, "/\\") {
		base = base[:i]
	}
	return base + "_output" + ext
}
