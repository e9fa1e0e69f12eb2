package main

import (
	"fmt"

	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <accession> [accessions...]",
	Short: "Compose and submit a virtual sample",
	Long: `Compose a virtual sample from archived source samples and submit it
through the Webin drop box.

Source metadata is fetched from the archive, reconciled down to the
attributes every source shares, completed against an ENA checklist, and
written to the run directory before anything is submitted. The run
directory must not exist yet; every document the run produces stays
there, including the archive's response.

Submissions go to the test service unless --prod is given. A run with
warnings falls back to the test service even under --prod; pass --force
to keep the production target anyway.`,
	Example: `  virsam submit ERS4858170 ERS4858171 --out runs/mMelMel1
  virsam submit --file sources.txt --out runs/pool --prod
  virsam submit ERS4858170 ERS4858171 --out runs/pool --checklist ERC000053
  virsam submit ERS4858170 ERS4858171 --out runs/pool --dry-run`,
	Args: cobra.ArbitraryArgs,
	RunE: runSubmit,
}

var (
	submitOut       string
	submitFile      string
	submitAlias     string
	submitChecklist string
	submitCenter    string
	submitProd      bool
	submitForce     bool
	submitDryRun    bool
	submitJSON      bool
)

func init() {
	submitCmd.Flags().StringVarP(&submitOut, "out", "o", "", "Run directory for this submission (required)")
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "Read source accessions from a file, one per line (- for stdin)")
	submitCmd.Flags().StringVar(&submitAlias, "alias", "", "Submission alias (default: derived from the sources)")
	submitCmd.Flags().StringVar(&submitChecklist, "checklist", "", "Checklist accession (default: taken from the sources)")
	submitCmd.Flags().StringVar(&submitCenter, "center", "", "Submitting center name")
	submitCmd.Flags().BoolVar(&submitProd, "prod", false, "Submit to the production service instead of the test service")
	submitCmd.Flags().BoolVar(&submitForce, "force", false, "Keep the production target even when the run has warnings")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Write the documents but do not submit")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "Print the result as JSON")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	sources := args
	if submitFile != "" {
		fromFile, err := readAccessionFile(submitFile)
		if err != nil {
			return fmt.Errorf("failed to read accession file: %w", err)
		}
		sources = append(sources, fromFile...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("at least one source accession is required")
	}
	if submitOut == "" {
		return fmt.Errorf("a run directory is required; pass --out")
	}

	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewSubmissionService(cfg, jdb)

	var result *service.SubmitResult
	err = runWithSpinner(fmt.Sprintf("Composing virtual sample from %d source samples", len(sources)),
		func() error {
			var runErr error
			result, runErr = svc.SubmitRun(cmd.Context(), &service.SubmitRequest{
				Sources:    sources,
				OutDir:     submitOut,
				Alias:      submitAlias,
				Checklist:  submitChecklist,
				CenterName: submitCenter,
				Production: submitProd,
				Force:      submitForce,
				DryRun:     submitDryRun,
			})
			return runErr
		})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	if verbose {
		for _, n := range result.Notes {
			printInfo("note: %s", n)
		}
	}

	if submitJSON {
		return printJSON(result)
	}

	switch {
	case result.DryRun:
		printSuccess("Composed %s with checklist %s (dry run, nothing submitted)",
			result.Alias, result.Checklist)
	case result.Existing:
		printSuccess("Sample %s is already archived as %s", result.Alias,
			colorize(colorCyan, result.Accession))
	default:
		printSuccess("Submitted %s as %s (%s service)", result.Alias,
			colorize(colorCyan, result.Accession), result.Target)
	}
	printInfo("Run directory: %s", result.RunDir)
	return nil
}
