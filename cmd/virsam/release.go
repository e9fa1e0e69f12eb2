package main

import (
	"fmt"

	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release a submitted virtual sample",
	Long: `Make an earlier submitted virtual sample public.

The run directory of the original submission identifies the sample. The
accession to release is recovered from the submission journal, falling
back to the archived submit response; pass --accession to override.`,
	Example: `  virsam release --out runs/mMelMel1
  virsam release --out runs/mMelMel1 --prod
  virsam release --out runs/mMelMel1 --accession ERS4858172`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

var (
	releaseOut       string
	releaseAccession string
	releaseProd      bool
	releaseJSON      bool
)

func init() {
	releaseCmd.Flags().StringVarP(&releaseOut, "out", "o", "", "Run directory of the original submission (required)")
	releaseCmd.Flags().StringVar(&releaseAccession, "accession", "", "Sample accession to release (default: recovered from the run)")
	releaseCmd.Flags().BoolVar(&releaseProd, "prod", false, "Release through the production service")
	releaseCmd.Flags().BoolVar(&releaseJSON, "json", false, "Print the result as JSON")
}

func runRelease(cmd *cobra.Command, args []string) error {
	if releaseOut == "" {
		return fmt.Errorf("a run directory is required; pass --out")
	}

	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewSubmissionService(cfg, jdb)

	var result *service.ReleaseResult
	err = runWithSpinner("Releasing sample", func() error {
		var runErr error
		result, runErr = svc.ReleaseRun(cmd.Context(), &service.ReleaseRequest{
			OutDir:     releaseOut,
			Accession:  releaseAccession,
			Production: releaseProd,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	if releaseJSON {
		return printJSON(result)
	}

	printSuccess("Released %s (%s service)", colorize(colorCyan, result.Accession), result.Target)
	return nil
}
