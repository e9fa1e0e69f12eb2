package testutil

import (
	"fmt"
	"strings"

	"github.com/seqops/virsam/internal/journal"
)

// Fixture data for tests

// Attribute is one sample attribute in a fixture document.
type Attribute struct {
	Tag   string
	Value string
	Unit  string
}

// SampleXML builds a browser-style sample document for the accession.
func SampleXML(accession, taxonID, scientificName string, attrs ...Attribute) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<SAMPLE_SET>\n")
	fmt.Fprintf(&b, "<SAMPLE accession=%q alias=%q>\n", accession, accession+"_alias")
	fmt.Fprintf(&b, "     <SAMPLE_NAME>\n          <TAXON_ID>%s</TAXON_ID>\n          <SCIENTIFIC_NAME>%s</SCIENTIFIC_NAME>\n     </SAMPLE_NAME>\n", taxonID, scientificName)
	b.WriteString("     <SAMPLE_ATTRIBUTES>\n")
	for _, attr := range attrs {
		b.WriteString("          <SAMPLE_ATTRIBUTE>\n")
		fmt.Fprintf(&b, "               <TAG>%s</TAG>\n               <VALUE>%s</VALUE>\n", attr.Tag, attr.Value)
		if attr.Unit != "" {
			fmt.Fprintf(&b, "               <UNITS>%s</UNITS>\n", attr.Unit)
		}
		b.WriteString("          </SAMPLE_ATTRIBUTE>\n")
	}
	b.WriteString("     </SAMPLE_ATTRIBUTES>\n</SAMPLE>\n</SAMPLE_SET>")
	return b.String()
}

// ChecklistXML builds a browser-style checklist document.
func ChecklistXML(accession, name string, mandatory, recommended []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<CHECKLIST_SET>\n")
	fmt.Fprintf(&b, "<CHECKLIST accession=%q>\n     <DESCRIPTOR>\n          <NAME>%s</NAME>\n          <FIELD_GROUP>\n", accession, name)
	for _, field := range mandatory {
		fmt.Fprintf(&b, "               <FIELD>\n                    <NAME>%s</NAME>\n                    <MANDATORY>mandatory</MANDATORY>\n               </FIELD>\n", field)
	}
	for _, field := range recommended {
		fmt.Fprintf(&b, "               <FIELD>\n                    <NAME>%s</NAME>\n                    <MANDATORY>recommended</MANDATORY>\n               </FIELD>\n", field)
	}
	b.WriteString("          </FIELD_GROUP>\n     </DESCRIPTOR>\n</CHECKLIST>\n</CHECKLIST_SET>")
	return b.String()
}

// ReceiptXML builds a drop box receipt. A non-empty sample accession adds
// the SAMPLE element; messages become ERROR entries.
func ReceiptXML(success bool, sampleAccession string, errors ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<RECEIPT receiptDate=\"2024-05-17T10:00:00.000+01:00\" success=%q>\n", fmt.Sprintf("%t", success))
	if sampleAccession != "" {
		fmt.Fprintf(&b, "     <SAMPLE accession=%q alias=\"fixture\" status=\"PRIVATE\"/>\n", sampleAccession)
	}
	if len(errors) > 0 {
		b.WriteString("     <MESSAGES>\n")
		for _, msg := range errors {
			fmt.Fprintf(&b, "          <ERROR>%s</ERROR>\n", msg)
		}
		b.WriteString("     </MESSAGES>\n")
	}
	b.WriteString("</RECEIPT>")
	return b.String()
}

// SampleEntry returns a journal entry for a submitted virtual sample.
func SampleEntry(alias, accession string) *journal.Entry {
	return &journal.Entry{
		Kind:      journal.KindSample,
		Alias:     alias,
		Accession: accession,
		Phase:     journal.PhaseSubmitted,
		Target:    journal.TargetTest,
		Checklist: "ERC000011",
		Sources:   []string{"ERS0000001", "ERS0000002"},
		RunDir:    "/runs/" + alias,
	}
}

// StudyEntry returns a journal entry for a registered study.
func StudyEntry(alias, accession string) *journal.Entry {
	return &journal.Entry{
		Kind:      journal.KindStudy,
		Alias:     alias,
		Accession: accession,
		Phase:     journal.PhaseSubmitted,
		Target:    journal.TargetTest,
		RunDir:    "/runs/" + alias,
	}
}

// Organisms commonly used in tests
var (
	OrganismMouse = "Mus musculus"
	OrganismMoth  = "Deilephila porcellus"
	OrganismHuman = "Homo sapiens"
)

// Checklists commonly used in tests
var (
	ChecklistDefault    = "ERC000011"
	ChecklistTreeOfLife = "ERC000053"
)
