// Command csvdoctor profiles, validates and cleans tabular data files, and
// serves the same engine over an HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "csvdoctor",
	Short: "CSV data quality scoring and statistical profiling",
	Long: `csvdoctor loads CSV and XLSX files, profiles their columns, scores
their data quality and applies cleaning operations. The serve command
exposes the same engine as an HTTP API with per-upload sessions.`,
}

func main() {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
