package compose

import (
	"strings"
	"testing"
	"time"
)

func TestRenderSample(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{Center: "CNAG"})

	out, err := RenderSample(vs)
	if err != nil {
		t.Fatalf("RenderSample failed: %v", err)
	}
	doc := string(out)

	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("Document should start with the XML header")
	}
	for _, want := range []string{
		"<SAMPLE_SET>",
		`alias="virtual_sample_ERS0000001_ERS0000002"`,
		`center_name="CNAG"`,
		"<TAXON_ID>9606</TAXON_ID>",
		"<SCIENTIFIC_NAME>Homo sapiens</SCIENTIFIC_NAME>",
		"<TAG>ENA-CHECKLIST</TAG>",
		"<VALUE>ERC000011</VALUE>",
		"<UNITS>DD</UNITS>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document missing %q:\n%s", want, doc)
		}
	}

	// Element order inside SAMPLE
	title := strings.Index(doc, "<TITLE>")
	name := strings.Index(doc, "<SAMPLE_NAME>")
	desc := strings.Index(doc, "<DESCRIPTION>")
	attrs := strings.Index(doc, "<SAMPLE_ATTRIBUTES>")
	if !(title < name && name < desc && desc < attrs) {
		t.Errorf("Unexpected element order: TITLE=%d SAMPLE_NAME=%d DESCRIPTION=%d SAMPLE_ATTRIBUTES=%d",
			title, name, desc, attrs)
	}
}

func TestRenderSampleOmitsEmptyPieces(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	out, err := RenderSample(vs)
	if err != nil {
		t.Fatalf("RenderSample failed: %v", err)
	}
	doc := string(out)

	if strings.Contains(doc, "center_name") {
		t.Error("Empty center name should be omitted")
	}
	// Placeholder attributes have no UNITS element
	placeholder := doc[strings.Index(doc, "collection date"):]
	if end := strings.Index(placeholder, "</SAMPLE_ATTRIBUTE>"); end >= 0 {
		if strings.Contains(placeholder[:end], "<UNITS>") {
			t.Error("Placeholder attribute should not carry UNITS")
		}
	}
}

func TestRenderSubmission(t *testing.T) {
	out, err := RenderSubmission()
	if err != nil {
		t.Fatalf("RenderSubmission failed: %v", err)
	}
	doc := string(out)

	if !strings.Contains(doc, "<SUBMISSION>") || !strings.Contains(doc, "<ACTIONS>") {
		t.Errorf("Missing envelope structure:\n%s", doc)
	}
	if !strings.Contains(doc, "<ADD>") && !strings.Contains(doc, "<ADD/>") {
		t.Errorf("Missing ADD action:\n%s", doc)
	}
}

func TestRenderRelease(t *testing.T) {
	out, err := RenderRelease("ERS9999999")
	if err != nil {
		t.Fatalf("RenderRelease failed: %v", err)
	}
	doc := string(out)

	if !strings.Contains(doc, "<MODIFY>") && !strings.Contains(doc, "<MODIFY/>") {
		t.Errorf("Missing MODIFY action:\n%s", doc)
	}
	if !strings.Contains(doc, `<RELEASE target="ERS9999999">`) &&
		!strings.Contains(doc, `<RELEASE target="ERS9999999"/>`) {
		t.Errorf("Missing targeted RELEASE action:\n%s", doc)
	}
}

func TestRenderProjectSubmission(t *testing.T) {
	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

	out, err := RenderProjectSubmission(false, now)
	if err != nil {
		t.Fatalf("RenderProjectSubmission failed: %v", err)
	}
	if strings.Contains(string(out), "HOLD") {
		t.Error("Hold action should only appear when releasing")
	}

	out, err = RenderProjectSubmission(true, now)
	if err != nil {
		t.Fatalf("RenderProjectSubmission failed: %v", err)
	}
	if !strings.Contains(string(out), `HoldUntilDate="2024-05-17"`) {
		t.Errorf("Missing hold date:\n%s", string(out))
	}
}
