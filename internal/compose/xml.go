package compose

import (
	"encoding/xml"
	"time"

	"github.com/seqops/virsam/internal/models"
)

// Document structures mirror the archive submission schemas. Struct
// field order matters: it is the element order in the rendered XML.

type sampleDocument struct {
	XMLName xml.Name    `xml:"SAMPLE_SET"`
	Sample  sampleEntry `xml:"SAMPLE"`
}

type sampleEntry struct {
	Alias       string           `xml:"alias,attr"`
	CenterName  string           `xml:"center_name,attr,omitempty"`
	Title       string           `xml:"TITLE"`
	SampleName  sampleName       `xml:"SAMPLE_NAME"`
	Description string           `xml:"DESCRIPTION,omitempty"`
	Attributes  sampleAttributes `xml:"SAMPLE_ATTRIBUTES"`
}

type sampleName struct {
	TaxonID        string `xml:"TAXON_ID"`
	ScientificName string `xml:"SCIENTIFIC_NAME"`
}

type sampleAttributes struct {
	Attributes []sampleAttribute `xml:"SAMPLE_ATTRIBUTE"`
}

type sampleAttribute struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
	Units string `xml:"UNITS,omitempty"`
}

type submissionEnvelope struct {
	XMLName xml.Name          `xml:"SUBMISSION"`
	Actions submissionActions `xml:"ACTIONS"`
}

type submissionActions struct {
	Actions []submissionAction `xml:"ACTION"`
}

type submissionAction struct {
	Add     *actionTarget `xml:"ADD,omitempty"`
	Modify  *actionTarget `xml:"MODIFY,omitempty"`
	Release *actionTarget `xml:"RELEASE,omitempty"`
	Hold    *holdAction   `xml:"HOLD,omitempty"`
}

type actionTarget struct {
	Target string `xml:"target,attr,omitempty"`
}

type holdAction struct {
	HoldUntilDate string `xml:"HoldUntilDate,attr"`
}

// RenderSample renders the virtual sample as a sample set document
// ready for the drop box.
func RenderSample(vs *models.VirtualSample) ([]byte, error) {
	entry := sampleEntry{
		Alias:       vs.Alias,
		CenterName:  vs.CenterName,
		Title:       vs.Title,
		Description: vs.Description,
		SampleName: sampleName{
			TaxonID:        vs.TaxonID,
			ScientificName: vs.ScientificName,
		},
	}
	for _, attr := range vs.Attributes.All() {
		entry.Attributes.Attributes = append(entry.Attributes.Attributes, sampleAttribute{
			Tag:   attr.Tag,
			Value: attr.Value,
			Units: attr.Unit,
		})
	}

	return renderDocument(sampleDocument{Sample: entry})
}

// RenderSubmission renders the envelope that adds new objects.
func RenderSubmission() ([]byte, error) {
	return renderDocument(submissionEnvelope{
		Actions: submissionActions{Actions: []submissionAction{
			{Add: &actionTarget{}},
		}},
	})
}

// RenderRelease renders the envelope that makes a submitted sample
// public: a MODIFY action followed by a targeted RELEASE.
func RenderRelease(accession string) ([]byte, error) {
	return renderDocument(submissionEnvelope{
		Actions: submissionActions{Actions: []submissionAction{
			{Modify: &actionTarget{}},
			{Release: &actionTarget{Target: accession}},
		}},
	})
}

// RenderProjectSubmission renders the envelope for project objects.
// Releasing a project works by holding it until today, which makes it
// public immediately.
func RenderProjectSubmission(release bool, now time.Time) ([]byte, error) {
	actions := []submissionAction{{Add: &actionTarget{}}}
	if release {
		actions = append(actions, submissionAction{
			Hold: &holdAction{HoldUntilDate: now.Format("2006-01-02")},
		})
	}
	return renderDocument(submissionEnvelope{
		Actions: submissionActions{Actions: actions},
	})
}

func renderDocument(doc interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
