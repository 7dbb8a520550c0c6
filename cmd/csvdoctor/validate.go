package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"csvdoctor/adapters/csvio"
	"csvdoctor/internal/validator"
)

var validateSchemaPath string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a data file for quality issues and print the report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, _, err := csvio.NewLoader(args[0]).Load()
		if err != nil {
			return err
		}

		v := validator.New(tbl)
		out := map[string]interface{}{"report": v.Report()}

		if validateSchemaPath != "" {
			data, err := os.ReadFile(validateSchemaPath)
			if err != nil {
				return err
			}
			schema, err := validator.ParseSchema(data)
			if err != nil {
				return err
			}
			out["schema_validation"] = v.ValidateSchema(schema)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "YAML schema file of expected column types")
	rootCmd.AddCommand(validateCmd)
}
