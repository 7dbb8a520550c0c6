package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"csvdoctor/adapters/csvio"
	"csvdoctor/internal/analyzer"
	"csvdoctor/internal/report"
	"csvdoctor/internal/validator"
)

var reportFlags struct {
	format string
	output string
}

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Generate a data quality report in Markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, _, err := csvio.NewLoader(args[0]).Load()
		if err != nil {
			return err
		}

		an := analyzer.New(tbl)
		analysis := an.Report()
		validation := validator.New(tbl).Report()

		in := report.Input{
			FileName:   filepath.Base(args[0]),
			Analysis:   &analysis,
			Validation: &validation,
		}
		for _, name := range tbl.ColumnNames() {
			if ins := an.ColumnInsights(name); ins != nil {
				in.Insights = append(in.Insights, *ins)
			}
		}

		var rendered []byte
		switch reportFlags.format {
		case "html":
			rendered = report.HTML(in)
		case "md", "markdown":
			rendered = []byte(report.Markdown(in))
		default:
			return fmt.Errorf("unsupported report format: %s", reportFlags.format)
		}

		if reportFlags.output != "" {
			return os.WriteFile(reportFlags.output, rendered, 0o644)
		}
		_, err = os.Stdout.Write(rendered)
		return err
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "md", "report format: md or html")
	reportCmd.Flags().StringVarP(&reportFlags.output, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(reportCmd)
}
