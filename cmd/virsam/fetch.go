package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <accession> [accessions...]",
	Short: "Download archive XML for accessions",
	Long: `Download the browser XML record for one or more accessions.

Each record is written verbatim to {accession}.xml in the output
directory. Sample, study and project accessions all work; the archive
decides what the record looks like.`,
	Example: `  virsam fetch ERS4858170
  virsam fetch ERS4858170 PRJEB40665 --out xml/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var fetchOut string

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", ".", "Directory to write the XML files to")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewSubmissionService(cfg, jdb)

	if err := os.MkdirAll(fetchOut, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	failed := 0
	for _, acc := range args {
		body, err := svc.Fetch(cmd.Context(), acc)
		if err != nil {
			printError("Failed to fetch %s: %v", acc, err)
			failed++
			continue
		}

		path := filepath.Join(fetchOut, acc+".xml")
		if err := os.WriteFile(path, body, 0644); err != nil {
			printError("Failed to write %s: %v", path, err)
			failed++
			continue
		}
		printSuccess("Fetched %s (%d bytes)", acc, len(body))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(args))
	}
	return nil
}
