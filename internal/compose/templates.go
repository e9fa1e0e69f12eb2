package compose

import (
	"strings"
	"text/template"
)

// Programmes recognized for study and umbrella registration.
const (
	ProgrammeERGABGE   = "ERGA-BGE"
	ProgrammeCBP       = "CBP"
	ProgrammeERGAPilot = "ERGA-pilot"
	ProgrammeEASI      = "EASI"
	ProgrammeATLASea   = "ATLASea"
	ProgrammeOther     = "other"
)

// Study types accepted for registration.
const (
	StudyTypeAssembly   = "assembly"
	StudyTypeSequencing = "sequencing"
)

// Programmes lists the accepted programme names in flag-help order.
var Programmes = []string{
	ProgrammeERGABGE,
	ProgrammeCBP,
	ProgrammeERGAPilot,
	ProgrammeEASI,
	ProgrammeATLASea,
	ProgrammeOther,
}

// projectTexts holds the title and description wording for study and
// umbrella documents. Kept as templates so the prose lives in one place
// instead of being scattered through the builders.
var projectTexts = template.Must(template.New("project").Parse(`
{{- define "assembly_title"}}Genome assembly of {{.Species}}{{end}}
{{- define "bge_assembly_title"}}{{.Species}} genome assembly, {{.ToLID}}{{end}}
{{- define "data_title"}}Sequencing data of {{.Species}}{{end}}
{{- define "assembly_description"}}This project provides the genome assembly of {{.Species}}{{with .CommonName}} (common name {{.}}){{end}}.{{with .ProgrammeNote}} {{.}}{{end}}{{with .Coordinator}} The sample was provided by {{.}}.{{end}}{{end}}
{{- define "data_description"}}This project collects the sequencing data generated for {{.Species}}{{with .CommonName}} (common name {{.}}){{end}}.{{with .ProgrammeNote}} {{.}}{{end}}{{end}}
{{- define "umbrella_description"}}This umbrella project gathers the studies generated for {{.Species}}.{{with .ProgrammeNote}} {{.}}{{end}}{{with .Coordinator}} Sample ambassador: {{.}}.{{end}}{{end}}
`))

type textData struct {
	Species       string
	CommonName    string
	ToLID         string
	Coordinator   string
	ProgrammeNote string
}

func renderText(name string, data textData) (string, error) {
	var b strings.Builder
	if err := projectTexts.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// programmeNote is the sentence appended to descriptions for programmes
// that credit their funding initiative.
func programmeNote(programme string) string {
	switch programme {
	case ProgrammeERGABGE:
		return "Data were produced as part of the Biodiversity Genomics Europe project."
	case ProgrammeCBP:
		return "Data were produced as part of the Catalan BioGenome Project."
	case ProgrammeERGAPilot:
		return "Data were produced as part of the European Reference Genome Atlas pilot project."
	case ProgrammeEASI:
		return "Data were produced as part of the EASI-Genomics programme."
	case ProgrammeATLASea:
		return "Data were produced as part of the ATLASea project."
	default:
		return ""
	}
}

// knownProgramme reports whether the programme name is recognized.
func knownProgramme(programme string) bool {
	for _, p := range Programmes {
		if p == programme {
			return true
		}
	}
	return false
}
