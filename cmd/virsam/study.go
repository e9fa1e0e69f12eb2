package main

import (
	"fmt"

	"github.com/seqops/virsam/internal/compose"
	"github.com/seqops/virsam/internal/service"
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Register a study project",
	Long: `Register a sequencing or assembly study with the archive.

Aliases and descriptions follow the conventions of the sequencing
programme: ERGA-BGE and ATLASea derive date-stamped aliases from the
ToLID, everything else derives from the species common name. The
project document and the archive's receipt are kept next to each other
in the output directory.`,
	Example: `  virsam study --project ERGA-BGE --study-type assembly --tolid mMelMel1 \
    --species "Meles meles" --name "Eurasian badger"
  virsam study --project ERGA-pilot --study-type sequencing \
    --species "Meles meles" --name "Eurasian badger" --sample-ambassador "A. Curator"
  virsam study --project ERGA-BGE --study-type assembly --tolid mMelMel1 \
    --species "Meles meles" --locus-tag MMEL --prod --release`,
	Args: cobra.NoArgs,
	RunE: runStudy,
}

var (
	studyProject    string
	studyType       string
	studyToLID      string
	studySpecies    string
	studyName       string
	studyAmbassador string
	studyLocusTag   string
	studyCenter     string
	studyOut        string
	studyProd       bool
	studyRelease    bool
	studyDryRun     bool
	studyJSON       bool
)

func init() {
	studyCmd.Flags().StringVar(&studyProject, "project", "", "Sequencing programme the study belongs to (required)")
	studyCmd.Flags().StringVar(&studyType, "study-type", "", "Study type: assembly or sequencing (required)")
	studyCmd.Flags().StringVar(&studyToLID, "tolid", "", "Tree of Life identifier of the specimen")
	studyCmd.Flags().StringVar(&studySpecies, "species", "", "Scientific name of the species (required)")
	studyCmd.Flags().StringVar(&studyName, "name", "", "Common name of the species")
	studyCmd.Flags().StringVar(&studyAmbassador, "sample-ambassador", "", "Sample ambassador credited in the description")
	studyCmd.Flags().StringVar(&studyLocusTag, "locus-tag", "", "Locus tag prefix for assembly studies (- disables)")
	studyCmd.Flags().StringVar(&studyCenter, "center", "", "Submitting center name")
	studyCmd.Flags().StringVarP(&studyOut, "out", "o", ".", "Directory for the project document and receipt")
	studyCmd.Flags().BoolVar(&studyProd, "prod", false, "Register through the production service")
	studyCmd.Flags().BoolVar(&studyRelease, "release", false, "Make the project public immediately")
	studyCmd.Flags().BoolVar(&studyDryRun, "dry-run", false, "Write the project document but do not submit")
	studyCmd.Flags().BoolVar(&studyJSON, "json", false, "Print the result as JSON")
}

func runStudy(cmd *cobra.Command, args []string) error {
	if studyProject == "" {
		return fmt.Errorf("a programme is required; pass --project")
	}
	if studyType == "" {
		return fmt.Errorf("a study type is required; pass --study-type assembly or --study-type sequencing")
	}
	if studySpecies == "" {
		return fmt.Errorf("a species is required; pass --species")
	}

	cfg, jdb, err := openJournal()
	if err != nil {
		return err
	}
	defer jdb.Close()

	svc := service.NewProjectService(cfg, jdb)

	message := "Registering study"
	if studyDryRun {
		message = "Writing study document"
	}

	var result *service.ProjectResult
	err = runWithSpinner(message, func() error {
		var runErr error
		result, runErr = svc.StudyRun(cmd.Context(), &service.StudyRunRequest{
			Study: compose.StudyRequest{
				Programme:   studyProject,
				Center:      studyCenter,
				ToLID:       studyToLID,
				Species:     studySpecies,
				CommonName:  studyName,
				Coordinator: studyAmbassador,
				StudyType:   studyType,
				LocusTag:    studyLocusTag,
			},
			OutDir:     studyOut,
			Production: studyProd,
			Release:    studyRelease,
			DryRun:     studyDryRun,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	return printProjectResult(result, studyJSON)
}
