package main

import (
	"fmt"

	"github.com/seqops/virsam/internal/compose"
	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var umbrellaCmd = &cobra.Command{
	Use:   "umbrella",
	Short: "Register an umbrella project",
	Long: `Register an umbrella project spanning existing studies.

The umbrella names the organism and links every child project given
with --children. Aliases follow the sequencing programme conventions,
as with study registration.`,
	Example: `  virsam umbrella --project ERGA-BGE --tolid mMelMel1 --species "Meles meles" \
    --taxon-id 9662 --children PRJEB70001,PRJEB70002
  virsam umbrella --project ERGA-pilot --species "Meles meles" --name "Eurasian badger" \
    --sample-ambassador "A. Curator" --taxon-id 9662 --children PRJEB70001`,
	Args: cobra.NoArgs,
	RunE: runUmbrella,
}

var (
	umbrellaProject    string
	umbrellaToLID      string
	umbrellaSpecies    string
	umbrellaName       string
	umbrellaAmbassador string
	umbrellaTaxonID    string
	umbrellaCenter     string
	umbrellaChildren   []string
	umbrellaOut        string
	umbrellaProd       bool
	umbrellaRelease    bool
	umbrellaDryRun     bool
	umbrellaJSON       bool
)

func init() {
	umbrellaCmd.Flags().StringVar(&umbrellaProject, "project", "", "Sequencing programme the umbrella belongs to (required)")
	umbrellaCmd.Flags().StringVar(&umbrellaToLID, "tolid", "", "Tree of Life identifier of the specimen")
	umbrellaCmd.Flags().StringVar(&umbrellaSpecies, "species", "", "Scientific name of the species (required)")
	umbrellaCmd.Flags().StringVar(&umbrellaName, "name", "", "Common name of the species")
	umbrellaCmd.Flags().StringVar(&umbrellaAmbassador, "sample-ambassador", "", "Sample ambassador, required for ERGA-pilot umbrellas")
	umbrellaCmd.Flags().StringVar(&umbrellaTaxonID, "taxon-id", "", "NCBI taxon ID of the species")
	umbrellaCmd.Flags().StringVar(&umbrellaCenter, "center", "", "Submitting center name")
	umbrellaCmd.Flags().StringSliceVar(&umbrellaChildren, "children", nil, "Child project accessions to link (comma separated)")
	umbrellaCmd.Flags().StringVarP(&umbrellaOut, "out", "o", ".", "Directory for the project document and receipt")
	umbrellaCmd.Flags().BoolVar(&umbrellaProd, "prod", false, "Register through the production service")
	umbrellaCmd.Flags().BoolVar(&umbrellaRelease, "release", false, "Make the project public immediately")
	umbrellaCmd.Flags().BoolVar(&umbrellaDryRun, "dry-run", false, "Write the project document but do not submit")
	umbrellaCmd.Flags().BoolVar(&umbrellaJSON, "json", false, "Print the result as JSON")
}

func runUmbrella(cmd *cobra.Command, args []string) error {
	if umbrellaProject == "" {
		return fmt.Errorf("a programme is required; pass --project")
	}
	if umbrellaSpecies == "" {
		return fmt.Errorf("a species is required; pass --species")
	}
	if len(umbrellaChildren) == 0 {
		return fmt.Errorf("at least one child project is required; pass --children")
	}

	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewProjectService(cfg, jdb)

	message := "Registering umbrella project"
	if umbrellaDryRun {
		message = "Writing umbrella document"
	}

	var result *service.ProjectResult
	err = runWithSpinner(message, func() error {
		var runErr error
		result, runErr = svc.UmbrellaRun(cmd.Context(), &service.UmbrellaRunRequest{
			Umbrella: compose.UmbrellaRequest{
				Programme:   umbrellaProject,
				Center:      umbrellaCenter,
				ToLID:       umbrellaToLID,
				Species:     umbrellaSpecies,
				CommonName:  umbrellaName,
				Coordinator: umbrellaAmbassador,
				TaxonID:     umbrellaTaxonID,
				Children:    umbrellaChildren,
			},
			OutDir:     umbrellaOut,
			Production: umbrellaProd,
			Release:    umbrellaRelease,
			DryRun:     umbrellaDryRun,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	return printProjectResult(result, umbrellaJSON)
}
