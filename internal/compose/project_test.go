package compose

import (
	"strings"
	"testing"
	"time"
)

var testDate = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

func studyRequest(programme, studyType string) StudyRequest {
	return StudyRequest{
		Programme:  programme,
		Center:     "CNAG",
		ToLID:      "mMusMus1",
		Species:    "Mus musculus",
		CommonName: "house mouse",
		StudyType:  studyType,
		LocusTag:   "-",
		Date:       testDate,
	}
}

func TestBuildStudyAliases(t *testing.T) {
	tests := []struct {
		programme string
		studyType string
		alias     string
	}{
		{ProgrammeERGABGE, StudyTypeAssembly, "erga-bge-mMusMus1_primary-2024-05-17"},
		{ProgrammeERGABGE, StudyTypeSequencing, "erga-bge-mMusMus1-study-rawdata-2024-05-17"},
		{ProgrammeATLASea, StudyTypeAssembly, "atlasea-mMusMus1_primary-2024-05-17"},
		{ProgrammeATLASea, StudyTypeSequencing, "atlasea-mMusMus1-study-rawdata-2024-05-17"},
		{ProgrammeCBP, StudyTypeAssembly, "house_mouse_genome_assembly"},
		{ProgrammeOther, StudyTypeSequencing, "house_mouse_sequencing_data"},
	}

	for _, tt := range tests {
		t.Run(tt.programme+"/"+tt.studyType, func(t *testing.T) {
			study, err := BuildStudy(studyRequest(tt.programme, tt.studyType))
			if err != nil {
				t.Fatalf("BuildStudy failed: %v", err)
			}
			if study.Alias != tt.alias {
				t.Errorf("Expected alias %s, got %s", tt.alias, study.Alias)
			}
		})
	}
}

func TestBuildStudyDocument(t *testing.T) {
	study, err := BuildStudy(studyRequest(ProgrammeERGABGE, StudyTypeSequencing))
	if err != nil {
		t.Fatalf("BuildStudy failed: %v", err)
	}
	doc := string(study.Document)

	for _, want := range []string{
		"<PROJECT_SET>",
		`center_name="CNAG"`,
		"<NAME>mMusMus1</NAME>",
		"<TITLE>Sequencing data of Mus musculus</TITLE>",
		"<SEQUENCING_PROJECT>",
		"<TAG>Keyword</TAG>",
		"<VALUE>ERGA-BGE</VALUE>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document missing %q:\n%s", want, doc)
		}
	}
	if !strings.Contains(doc, "Biodiversity Genomics Europe") {
		t.Errorf("Description should credit the programme:\n%s", doc)
	}
}

func TestBuildStudyLocusTag(t *testing.T) {
	req := studyRequest(ProgrammeERGABGE, StudyTypeAssembly)
	req.LocusTag = "MMUS1"

	study, err := BuildStudy(req)
	if err != nil {
		t.Fatalf("BuildStudy failed: %v", err)
	}
	if !strings.Contains(string(study.Document), "<LOCUS_TAG_PREFIX>MMUS1</LOCUS_TAG_PREFIX>") {
		t.Errorf("Missing locus tag prefix:\n%s", string(study.Document))
	}

	// "-" disables registration
	req.LocusTag = "-"
	study, err = BuildStudy(req)
	if err != nil {
		t.Fatalf("BuildStudy failed: %v", err)
	}
	if strings.Contains(string(study.Document), "LOCUS_TAG_PREFIX") {
		t.Error("Locus tag prefix should be absent when disabled")
	}
}

func TestBuildStudyKeywordProgrammes(t *testing.T) {
	tests := []struct {
		programme string
		keyword   bool
	}{
		{ProgrammeERGABGE, true},
		{ProgrammeCBP, true},
		{ProgrammeEASI, true},
		{ProgrammeERGAPilot, false},
		{ProgrammeATLASea, false},
		{ProgrammeOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.programme, func(t *testing.T) {
			req := studyRequest(tt.programme, StudyTypeSequencing)
			study, err := BuildStudy(req)
			if err != nil {
				t.Fatalf("BuildStudy failed: %v", err)
			}
			has := strings.Contains(string(study.Document), "PROJECT_ATTRIBUTES")
			if has != tt.keyword {
				t.Errorf("Keyword attribute presence = %v, expected %v", has, tt.keyword)
			}
		})
	}
}

func TestBuildStudyValidation(t *testing.T) {
	req := studyRequest("not-a-programme", StudyTypeAssembly)
	if _, err := BuildStudy(req); err == nil {
		t.Error("Expected error for unknown programme")
	}

	req = studyRequest(ProgrammeERGABGE, "metagenome")
	if _, err := BuildStudy(req); err == nil {
		t.Error("Expected error for unknown study type")
	}

	req = studyRequest(ProgrammeCBP, StudyTypeAssembly)
	req.CommonName = ""
	if _, err := BuildStudy(req); err == nil {
		t.Error("Expected error when the alias needs a common name")
	}
}

func umbrellaRequest(programme string) UmbrellaRequest {
	return UmbrellaRequest{
		Programme:  programme,
		Center:     "CNAG",
		ToLID:      "mMusMus",
		Species:    "Mus musculus",
		CommonName: "house mouse",
		TaxonID:    "10090",
		Children:   []string{"PRJEB00001", "PRJEB00002"},
		Date:       testDate,
	}
}

func TestBuildUmbrellaAliases(t *testing.T) {
	tests := []struct {
		programme string
		alias     string
	}{
		{ProgrammeCBP, "cbp-mMusMus-study-umbrella-2024-05-17"},
		{ProgrammeERGABGE, "erga-bge-mMusMus-study-umbrella-2024-05-17"},
		{ProgrammeATLASea, "mMusMus-study-umbrella-2024-05-17"},
		{ProgrammeOther, "mMusMus-study-umbrella-2024-05-17"},
	}

	for _, tt := range tests {
		t.Run(tt.programme, func(t *testing.T) {
			umbrella, err := BuildUmbrella(umbrellaRequest(tt.programme))
			if err != nil {
				t.Fatalf("BuildUmbrella failed: %v", err)
			}
			if umbrella.Alias != tt.alias {
				t.Errorf("Expected alias %s, got %s", tt.alias, umbrella.Alias)
			}
		})
	}
}

func TestBuildUmbrellaDocument(t *testing.T) {
	umbrella, err := BuildUmbrella(umbrellaRequest(ProgrammeERGABGE))
	if err != nil {
		t.Fatalf("BuildUmbrella failed: %v", err)
	}
	doc := string(umbrella.Document)

	for _, want := range []string{
		"<UMBRELLA_PROJECT>",
		"<TAXON_ID>10090</TAXON_ID>",
		"<SCIENTIFIC_NAME>Mus musculus</SCIENTIFIC_NAME>",
		"<TITLE>Mus musculus</TITLE>",
		`<CHILD_PROJECT accession="PRJEB00001">`,
		`<CHILD_PROJECT accession="PRJEB00002">`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document missing %q:\n%s", want, doc)
		}
	}
}

func TestBuildUmbrellaNoChildren(t *testing.T) {
	req := umbrellaRequest(ProgrammeERGABGE)
	req.Children = nil

	umbrella, err := BuildUmbrella(req)
	if err != nil {
		t.Fatalf("BuildUmbrella failed: %v", err)
	}
	if strings.Contains(string(umbrella.Document), "RELATED_PROJECTS") {
		t.Error("RELATED_PROJECTS should be omitted without children")
	}
}

func TestBuildUmbrellaPilotRequirements(t *testing.T) {
	req := umbrellaRequest(ProgrammeERGAPilot)
	if _, err := BuildUmbrella(req); err == nil {
		t.Error("Expected error without a sample ambassador")
	}

	req.Coordinator = "Jane Smith"
	umbrella, err := BuildUmbrella(req)
	if err != nil {
		t.Fatalf("BuildUmbrella failed: %v", err)
	}
	if umbrella.Alias != "house mouse" {
		t.Errorf("Pilot umbrella alias should be the common name, got %q", umbrella.Alias)
	}
	if !strings.Contains(string(umbrella.Document), "Jane Smith") {
		t.Error("Description should name the sample ambassador")
	}
}
