package compose

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/seqops/virsam/internal/errors"
)

type projectDocument struct {
	XMLName xml.Name     `xml:"PROJECT_SET"`
	Project projectEntry `xml:"PROJECT"`
}

type projectEntry struct {
	CenterName        string             `xml:"center_name,attr,omitempty"`
	Alias             string             `xml:"alias,attr"`
	Name              string             `xml:"NAME"`
	Title             string             `xml:"TITLE"`
	Description       string             `xml:"DESCRIPTION"`
	SubmissionProject *submissionProject `xml:"SUBMISSION_PROJECT,omitempty"`
	UmbrellaProject   *umbrellaProject   `xml:"UMBRELLA_PROJECT,omitempty"`
	RelatedProjects   *relatedProjects   `xml:"RELATED_PROJECTS,omitempty"`
	Attributes        *projectAttributes `xml:"PROJECT_ATTRIBUTES,omitempty"`
}

type submissionProject struct {
	SequencingProject sequencingProject `xml:"SEQUENCING_PROJECT"`
}

type sequencingProject struct {
	LocusTagPrefix string `xml:"LOCUS_TAG_PREFIX,omitempty"`
}

type umbrellaProject struct {
	Organism organism `xml:"ORGANISM"`
}

type organism struct {
	TaxonID        string `xml:"TAXON_ID"`
	ScientificName string `xml:"SCIENTIFIC_NAME"`
}

type relatedProjects struct {
	Related []relatedProject `xml:"RELATED_PROJECT"`
}

type relatedProject struct {
	Child childProject `xml:"CHILD_PROJECT"`
}

type childProject struct {
	Accession string `xml:"accession,attr"`
}

type projectAttributes struct {
	Attributes []projectAttribute `xml:"PROJECT_ATTRIBUTE"`
}

type projectAttribute struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
}

// Project is a built project document ready for submission.
type Project struct {
	Alias    string
	Name     string
	Title    string
	Document []byte
}

// StudyRequest describes a sequencing or assembly study to register.
type StudyRequest struct {
	Programme   string
	Center      string
	ToLID       string
	Species     string // scientific name
	CommonName  string
	Coordinator string    // sample ambassador
	StudyType   string    // assembly or sequencing
	LocusTag    string    // locus tag prefix for assemblies; "-" or empty disables it
	Date        time.Time // alias date stamp; zero means today
}

// UmbrellaRequest describes an umbrella project tying child studies
// together under one organism.
type UmbrellaRequest struct {
	Programme   string
	Center      string
	ToLID       string
	Species     string
	CommonName  string
	Coordinator string // sample ambassador, required for ERGA-pilot
	TaxonID     string
	Children    []string // child project accessions
	Date        time.Time
}

// BuildStudy derives the study's alias, title and description for its
// programme and renders the project document.
func BuildStudy(req StudyRequest) (*Project, error) {
	const op errors.Op = "compose.BuildStudy"

	if !knownProgramme(req.Programme) {
		return nil, errors.E(op, errors.KindValidation, fmt.Errorf("unknown programme %q", req.Programme))
	}
	if req.StudyType != StudyTypeAssembly && req.StudyType != StudyTypeSequencing {
		return nil, errors.E(op, errors.KindValidation, fmt.Errorf("study type must be %s or %s, got %q",
			StudyTypeAssembly, StudyTypeSequencing, req.StudyType))
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}
	stamp := date.Format("2006-01-02")

	var alias, titleTemplate string
	switch req.StudyType {
	case StudyTypeAssembly:
		titleTemplate = "assembly_title"
		switch req.Programme {
		case ProgrammeERGABGE:
			alias = "erga-bge-" + req.ToLID + "_primary-" + stamp
			titleTemplate = "bge_assembly_title"
		case ProgrammeATLASea:
			alias = "atlasea-" + req.ToLID + "_primary-" + stamp
			titleTemplate = "bge_assembly_title"
		default:
			if req.CommonName == "" {
				return nil, errors.E(op, errors.KindValidation,
					fmt.Errorf("common name is required to derive the study alias under programme %s", req.Programme))
			}
			alias = strings.ReplaceAll(req.CommonName, " ", "_") + "_genome_assembly"
		}
	case StudyTypeSequencing:
		titleTemplate = "data_title"
		switch req.Programme {
		case ProgrammeERGABGE:
			alias = "erga-bge-" + req.ToLID + "-study-rawdata-" + stamp
		case ProgrammeATLASea:
			alias = "atlasea-" + req.ToLID + "-study-rawdata-" + stamp
		default:
			if req.CommonName == "" {
				return nil, errors.E(op, errors.KindValidation,
					fmt.Errorf("common name is required to derive the study alias under programme %s", req.Programme))
			}
			alias = strings.ReplaceAll(req.CommonName, " ", "_") + "_sequencing_data"
		}
	}

	data := textData{
		Species:       req.Species,
		CommonName:    req.CommonName,
		ToLID:         req.ToLID,
		Coordinator:   req.Coordinator,
		ProgrammeNote: programmeNote(req.Programme),
	}

	title, err := renderText(titleTemplate, data)
	if err != nil {
		return nil, errors.E(op, err)
	}
	descTemplate := "data_description"
	if req.StudyType == StudyTypeAssembly {
		descTemplate = "assembly_description"
	}
	description, err := renderText(descTemplate, data)
	if err != nil {
		return nil, errors.E(op, err)
	}

	entry := projectEntry{
		CenterName:        req.Center,
		Alias:             alias,
		Name:              req.ToLID,
		Title:             title,
		Description:       description,
		SubmissionProject: &submissionProject{},
	}
	if req.StudyType == StudyTypeAssembly && req.LocusTag != "" && req.LocusTag != "-" {
		entry.SubmissionProject.SequencingProject.LocusTagPrefix = req.LocusTag
	}
	entry.Attributes = keywordAttributes(req.Programme)

	doc, err := renderDocument(projectDocument{Project: entry})
	if err != nil {
		return nil, errors.E(op, err)
	}

	return &Project{Alias: alias, Name: req.ToLID, Title: title, Document: doc}, nil
}

// BuildUmbrella renders the umbrella project document linking the given
// child project accessions under one organism.
func BuildUmbrella(req UmbrellaRequest) (*Project, error) {
	const op errors.Op = "compose.BuildUmbrella"

	if !knownProgramme(req.Programme) {
		return nil, errors.E(op, errors.KindValidation, fmt.Errorf("unknown programme %q", req.Programme))
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}
	stamp := date.Format("2006-01-02")

	var alias string
	switch req.Programme {
	case ProgrammeERGAPilot:
		if req.Coordinator == "" {
			return nil, errors.E(op, errors.KindValidation,
				fmt.Errorf("a sample ambassador is required for %s umbrella projects", ProgrammeERGAPilot))
		}
		if req.CommonName == "" {
			return nil, errors.E(op, errors.KindValidation,
				fmt.Errorf("common name is required to derive the umbrella alias under programme %s", ProgrammeERGAPilot))
		}
		alias = req.CommonName
	case ProgrammeCBP:
		alias = "cbp-" + req.ToLID + "-study-umbrella-" + stamp
	case ProgrammeERGABGE:
		alias = "erga-bge-" + req.ToLID + "-study-umbrella-" + stamp
	default:
		alias = req.ToLID + "-study-umbrella-" + stamp
	}

	description, err := renderText("umbrella_description", textData{
		Species:       req.Species,
		Coordinator:   req.Coordinator,
		ProgrammeNote: programmeNote(req.Programme),
	})
	if err != nil {
		return nil, errors.E(op, err)
	}

	entry := projectEntry{
		CenterName:  req.Center,
		Alias:       alias,
		Name:        req.ToLID,
		Title:       req.Species,
		Description: description,
		UmbrellaProject: &umbrellaProject{
			Organism: organism{
				TaxonID:        req.TaxonID,
				ScientificName: req.Species,
			},
		},
	}
	if len(req.Children) > 0 {
		related := &relatedProjects{}
		for _, child := range req.Children {
			related.Related = append(related.Related, relatedProject{
				Child: childProject{Accession: child},
			})
		}
		entry.RelatedProjects = related
	}
	entry.Attributes = keywordAttributes(req.Programme)

	doc, err := renderDocument(projectDocument{Project: entry})
	if err != nil {
		return nil, errors.E(op, err)
	}

	return &Project{Alias: alias, Name: req.ToLID, Title: req.Species, Document: doc}, nil
}

// keywordAttributes tags the project with its programme keyword for the
// programmes that register one.
func keywordAttributes(programme string) *projectAttributes {
	switch programme {
	case ProgrammeCBP, ProgrammeEASI, ProgrammeERGABGE:
		return &projectAttributes{Attributes: []projectAttribute{
			{Tag: "Keyword", Value: programme},
		}}
	default:
		return nil
	}
}
