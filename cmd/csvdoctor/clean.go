package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"csvdoctor/adapters/csvio"
	"csvdoctor/adapters/export"
	"csvdoctor/domain/table"
	"csvdoctor/internal/cleaner"
)

var cleanFlags struct {
	removeEmptyRows    bool
	removeEmptyColumns bool
	trimWhitespace     bool
	dedupe             bool
	keep               string
	fillMethod         string
	fillValue          string
	fillColumns        []string
	standardizeNames   bool
	textCase           string
	textColumns        []string
	outlierMethod      string
	outlierThreshold   float64
	outlierColumns     []string
	output             string
	format             string
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Apply cleaning operations and write the cleaned table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, _, err := csvio.NewLoader(args[0]).Load()
		if err != nil {
			return err
		}

		p := cleaner.New(tbl)
		if cleanFlags.removeEmptyRows {
			p.RemoveEmptyRows()
		}
		if cleanFlags.removeEmptyColumns {
			p.RemoveEmptyColumns()
		}
		if cleanFlags.trimWhitespace {
			p.TrimWhitespace(nil)
		}
		if cleanFlags.dedupe {
			p.RemoveDuplicates(nil, cleaner.KeepMode(cleanFlags.keep))
		}
		if cleanFlags.fillMethod != "" {
			method := cleaner.FillMethod(cleanFlags.fillMethod)
			var fill *table.Value
			if method == cleaner.FillValue {
				v := table.NewStringValue(cleanFlags.fillValue)
				fill = &v
			}
			p.FillMissing(method, cleanFlags.fillColumns, fill)
		}
		if cleanFlags.standardizeNames {
			p.StandardizeColumnNames()
		}
		if cleanFlags.textCase != "" {
			p.NormalizeTextCase(cleanFlags.textColumns, cleaner.TextCase(cleanFlags.textCase))
		}
		if cleanFlags.outlierMethod != "" {
			p.RemoveOutliers(cleanFlags.outlierColumns,
				cleaner.OutlierMethod(cleanFlags.outlierMethod), cleanFlags.outlierThreshold)
		}

		for _, change := range p.Changes() {
			fmt.Fprintln(os.Stderr, change)
		}

		format, err := export.ParseFormat(cleanFlags.format)
		if err != nil {
			return err
		}
		out := os.Stdout
		if cleanFlags.output != "" {
			f, err := os.Create(cleanFlags.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return export.Write(out, p.Table(), format)
	},
}

func init() {
	f := cleanCmd.Flags()
	f.BoolVar(&cleanFlags.removeEmptyRows, "remove-empty-rows", false, "drop fully null rows")
	f.BoolVar(&cleanFlags.removeEmptyColumns, "remove-empty-columns", false, "drop fully null columns")
	f.BoolVar(&cleanFlags.trimWhitespace, "trim-whitespace", false, "trim whitespace in text columns")
	f.BoolVar(&cleanFlags.dedupe, "dedupe", false, "remove duplicate rows")
	f.StringVar(&cleanFlags.keep, "keep", "first", "which duplicate to keep: first, last or none")
	f.StringVar(&cleanFlags.fillMethod, "fill", "", "fill missing values: mean, median, mode, forward_fill, backward_fill or value")
	f.StringVar(&cleanFlags.fillValue, "fill-value", "", "literal used with --fill value")
	f.StringSliceVar(&cleanFlags.fillColumns, "fill-columns", nil, "columns to fill (default all applicable)")
	f.BoolVar(&cleanFlags.standardizeNames, "standardize-names", false, "snake_case the column names")
	f.StringVar(&cleanFlags.textCase, "text-case", "", "normalize text case: lower, upper or title")
	f.StringSliceVar(&cleanFlags.textColumns, "text-columns", nil, "columns for --text-case (default all text)")
	f.StringVar(&cleanFlags.outlierMethod, "outliers", "", "remove outlier rows: iqr or zscore")
	f.Float64Var(&cleanFlags.outlierThreshold, "outlier-threshold", cleaner.DefaultIQRThreshold, "outlier threshold (1.5 IQR multiplier, 3.0 z-score)")
	f.StringSliceVar(&cleanFlags.outlierColumns, "outlier-columns", nil, "columns for --outliers (default all numeric)")
	f.StringVarP(&cleanFlags.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&cleanFlags.format, "format", "csv", "output format: csv, tsv, json, xlsx or html")
	rootCmd.AddCommand(cleanCmd)
}
