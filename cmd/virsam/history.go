package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past submissions from the journal",
	Long: `List what was submitted, where, and what the archive assigned.

The journal records every run of submit, study and umbrella together
with its phase, target service and accession. Newest entries come
first.`,
	Example: `  virsam history
  virsam history --limit 5
  virsam history --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum entries to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewSubmissionService(cfg, jdb)

	entries, err := svc.History(historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		printInfo("No submissions recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		colorize(colorBold, "WHEN"),
		colorize(colorBold, "KIND"),
		colorize(colorBold, "ALIAS"),
		colorize(colorBold, "ACCESSION"),
		colorize(colorBold, "PHASE"),
		colorize(colorBold, "TARGET"))
	for _, e := range entries {
		accession := e.Accession
		if accession == "" {
			accession = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Kind,
			truncateStr(e.Alias, 40),
			colorize(colorCyan, accession),
			e.Phase,
			e.Target)
	}
	w.Flush()

	if !quiet {
		fmt.Printf("\n%s\n", colorize(colorGray, fmt.Sprintf("Showing %d entries", len(entries))))
	}
	return nil
}
