package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	noColor bool
	quiet   bool
	verbose bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "virsam",
	Short: "Virtual sample composer for the ENA archive",
	Long: `virsam composes virtual samples from physical samples already archived
in the European Nucleotide Archive and submits them through the Webin
drop box.

A virtual sample carries the metadata shared by all of its sources,
completed against an ENA checklist, with a provenance description that
names every source sample. virsam also registers the study and umbrella
projects that sequencing programmes organise their data under, and keeps
a local journal of everything it submitted.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
	Example: `  # Compose and submit a virtual sample to the test service
  virsam submit ERS4858170 ERS4858171 --out runs/mMelMel1

  # Submit to production, then make the sample public
  virsam submit ERS4858170 ERS4858171 --out runs/mMelMel1 --prod
  virsam release --out runs/mMelMel1 --prod

  # Register an assembly study
  virsam study --project ERGA-BGE --study-type assembly --tolid mMelMel1 \
    --species "Meles meles" --name "Eurasian badger"

  # Review past submissions
  virsam history --limit 10`,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	// Add commands to root
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(umbrellaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
