package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"csvdoctor/adapters/csvio"
	"csvdoctor/internal/analyzer"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a data file and print the analysis report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, meta, err := csvio.NewLoader(args[0]).Load()
		if err != nil {
			return err
		}

		out := map[string]interface{}{
			"metadata": meta,
			"report":   analyzer.New(tbl).Report(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
