package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist [accession]",
	Short: "Show the fields of an ENA checklist",
	Long: `Fetch a checklist definition from the archive and show its fields.

Without an accession the configured default checklist is shown. Only
the mandatory and recommended field groups take part in composition;
optional fields are omitted.`,
	Example: `  virsam checklist
  virsam checklist ERC000053
  virsam checklist ERC000011 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChecklist,
}

var checklistJSON bool

func init() {
	checklistCmd.Flags().BoolVar(&checklistJSON, "json", false, "Print the checklist as JSON")
}

func runChecklist(cmd *cobra.Command, args []string) error {
	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewSubmissionService(cfg, jdb)

	accession := cfg.Defaults.Checklist
	if len(args) > 0 {
		accession = args[0]
	}

	spec, err := svc.Checklist(cmd.Context(), accession)
	if err != nil {
		return err
	}

	if checklistJSON {
		return printJSON(spec)
	}

	printInfo("%s %s", colorize(colorBold, spec.Accession), spec.Name)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		colorize(colorBold, "FIELD"),
		colorize(colorBold, "OBLIGATION"),
		colorize(colorBold, "UNIT"))
	for _, field := range spec.Fields() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", field.Name, field.Obligation, field.Unit)
	}
	w.Flush()

	if !quiet {
		fmt.Printf("\n%s\n", colorize(colorGray,
			fmt.Sprintf("%d mandatory, %d recommended fields",
				len(spec.Mandatory), len(spec.Recommended))))
	}
	return nil
}
