// Command restraints scores a restraint workbook from the command line and
// writes a scored copy next to the input.
//
// Usage:
//
//	restraints [-decay reciprocal|exp] [-d0 1.8] [-format xlsx|csv] [-no-output] input.xlsx
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/scoring"
	"github.com/GulmanM/Restraints-Quality-Calculator/internal/sheet"
)

func main() {
	decayName := flag.String("decay", "reciprocal", "distance decay function: reciprocal or exp")
	d0 := flag.Float64("d0", scoring.DefaultD0, "reference distance for exp decay")
	format := flag.String("format", "xlsx", "input format: xlsx or csv")
	noOutput := flag.Bool("no-output", false, "print the score without writing an output file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: restraints [flags] <input file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	if err := run(inputPath, *format, *decayName, *d0, *noOutput); err != nil {
		fmt.Fprintf(os.Stderr, "restraints: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, format, decayName string, d0 float64, noOutput bool) error {
	var (
		table *sheet.Table
		err   error
	)
	switch format {
	case "xlsx":
		table, err = sheet.ReadWorkbook(inputPath)
	case "csv":
		table, err = sheet.ReadCSV(inputPath)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	for _, row := range table.Dropped {
		fmt.Fprintf(os.Stderr, "warning: dropped row %d (blank or non-numeric values)\n", row)
	}

	decay, err := scoring.DecayForName(decayName, d0)
	if err != nil {
		return err
	}
	scorer := scoring.NewScorer(decay, nil)
	res, err := scorer.Score(table.Constants, table.Records)
	if err != nil {
		return err
	}

	c := table.Constants
	fmt.Printf("File: %s\n", inputPath)
	fmt.Printf("Lengths: Ls=%g, Lx=%g, Ly=%g, Lz=%g\n", c.Ls, c.Lx, c.Ly, c.Lz)
	fmt.Printf("Records: %d\n", len(table.Records))
	fmt.Printf("sigma_P=%.6f sigma_L=%.6f mean_omega=%.6f\n", res.SigmaP, res.SigmaL, res.MeanOmega)
	fmt.Printf("Restraint Score: %.6f\n", res.FinalScore)

	if noOutput {
		return nil
	}

	var outPath string
	switch format {
	case "xlsx":
		outPath = sheet.OutputPath(inputPath, ".xlsx")
		err = sheet.WriteWorkbook(outPath, table, res)
	case "csv":
		outPath = sheet.OutputPath(inputPath, ".csv")
		err = sheet.WriteCSV(outPath, table, res)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", outPath)
	return nil
}
