// gen_example.go — standalone script to generate a sample restraint workbook
// in the expected input layout.
//
// Usage:
//
//	go run scripts/gen_example.go -out example.xlsx
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"
)

func main() {
	out := flag.String("out", "example.xlsx", "output workbook path")
	flag.Parse()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	set := func(cell string, v interface{}) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			log.Fatalf("set %s: %v", cell, err)
		}
	}

	// Constants block: labels in A, values in B2..B5
	set("A1", "constants")
	labels := []string{"Ls", "Lx", "Ly", "Lz"}
	values := []float64{10, 42.5, 38.1, 29.7}
	for i := range labels {
		set(fmt.Sprintf("A%d", i+2), labels[i])
		set(fmt.Sprintf("B%d", i+2), values[i])
	}

	// Table header on row 7
	header := []string{"prot x coor", "prot y coor", "prot z coor", "sl", "wi", "dij"}
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 7)
		set(cell, name)
	}

	// Sample restraints spread across the protein surface and peptide
	rows := [][]float64{
		{12.3, 8.7, 14.2, 1, 0.92, 2.1},
		{31.8, 22.4, 6.9, 3, 0.85, 3.4},
		{5.2, 30.1, 21.5, 5, 0.61, 1.7},
		{38.9, 12.6, 25.3, 7, 0.74, 4.8},
		{20.4, 33.8, 10.1, 9, 0.88, 2.9},
	}
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, 8+i)
			set(cell, v)
		}
	}

	if err := f.SaveAs(*out); err != nil {
		log.Fatalf("save workbook: %v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}
