package compose

import (
	"strings"
	"testing"

	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/reconcile"
)

func testMerge() *reconcile.MergeResult {
	merged := &reconcile.MergeResult{
		TaxonID:        "9606",
		ScientificName: "Homo sapiens",
		Attributes:     models.NewAttributeSet(),
		Sources:        []string{"ERS0000001", "ERS0000002"},
	}
	merged.Attributes.Add("project name", "DTOL", "")
	merged.Attributes.Add("geographic location (latitude)", "52.1", "DD")
	return merged
}

func testSpec() *models.ChecklistSpec {
	return &models.ChecklistSpec{
		Accession: "ERC000011",
		Name:      "ENA default sample checklist",
		Mandatory: []string{"collection date", "geographic location (country and/or sea)", "project name"},
		Units:     map[string]string{"geographic location (altitude)": "m"},
	}
}

func TestDefaultAlias(t *testing.T) {
	alias := DefaultAlias([]string{"ERS0000001", "ERS0000002"})
	if alias != "virtual_sample_ERS0000001_ERS0000002" {
		t.Errorf("Unexpected default alias: %s", alias)
	}
}

func TestCompose(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	if vs.Alias != "virtual_sample_ERS0000001_ERS0000002" {
		t.Errorf("Expected derived alias, got %s", vs.Alias)
	}
	if vs.TaxonID != "9606" || vs.ScientificName != "Homo sapiens" {
		t.Errorf("Taxonomy not carried: %s, %s", vs.TaxonID, vs.ScientificName)
	}
	if vs.Checklist != "ERC000011" {
		t.Errorf("Expected checklist ERC000011, got %s", vs.Checklist)
	}

	expected := []string{
		reconcile.ReservedChecklistTag,
		"project name",
		"geographic location (latitude)",
		"collection date",
		"geographic location (country and/or sea)",
	}
	tags := vs.Attributes.Tags()
	if len(tags) != len(expected) {
		t.Fatalf("Expected tags %v, got %v", expected, tags)
	}
	for i := range expected {
		if tags[i] != expected[i] {
			t.Errorf("Tag %d: expected %q, got %q", i, expected[i], tags[i])
		}
	}
}

func TestComposeChecklistMarker(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	attr, ok := vs.Attributes.Get(reconcile.ReservedChecklistTag)
	if !ok {
		t.Fatal("Checklist marker attribute missing")
	}
	if attr.Value != "ERC000011" {
		t.Errorf("Expected marker value ERC000011, got %s", attr.Value)
	}
	if attr.Unit != "" {
		t.Errorf("Checklist marker must not carry a unit, got %q", attr.Unit)
	}
}

func TestComposePlaceholders(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	attr, ok := vs.Attributes.Get("collection date")
	if !ok {
		t.Fatal("Expected placeholder for unmet mandatory field")
	}
	if attr.Value != PlaceholderValue {
		t.Errorf("Expected placeholder value %q, got %q", PlaceholderValue, attr.Value)
	}
	if attr.Unit != "" {
		t.Errorf("Placeholder must not carry a unit, got %q", attr.Unit)
	}
}

func TestComposeKeepsProvidedMandatoryValue(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	attr, ok := vs.Attributes.Get("project name")
	if !ok {
		t.Fatal("Shared attribute missing")
	}
	if attr.Value != "DTOL" {
		t.Errorf("Shared value must not be replaced by a placeholder, got %q", attr.Value)
	}
}

func TestComposeCarriesUnits(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	attr, _ := vs.Attributes.Get("geographic location (latitude)")
	if attr.Unit != "DD" {
		t.Errorf("Expected unit DD on shared attribute, got %q", attr.Unit)
	}
}

func TestComposeExplicitOptions(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{Alias: "my_virtual_sample", Center: "CNAG"})

	if vs.Alias != "my_virtual_sample" {
		t.Errorf("Expected explicit alias, got %s", vs.Alias)
	}
	if vs.CenterName != "CNAG" {
		t.Errorf("Expected center CNAG, got %s", vs.CenterName)
	}
}

func TestComposeDescription(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	want := "This sample is a virtual sample of assembled raw reads from multiple physical " +
		"samples of genome and is composed of physical samples ERS0000001, ERS0000002."
	if vs.Description != want {
		t.Errorf("Unexpected description:\n got: %s\nwant: %s", vs.Description, want)
	}
	if !strings.Contains(vs.Title, "Homo sapiens") {
		t.Errorf("Title should name the organism, got %q", vs.Title)
	}
}

func TestSourcesFromDescription(t *testing.T) {
	vs := Compose(testMerge(), testSpec(), Options{})

	got := SourcesFromDescription(vs.Description)
	want := []string{"ERS0000001", "ERS0000002"}
	if len(got) != len(want) {
		t.Fatalf("Expected sources %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Source %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if got := SourcesFromDescription("An ordinary sample description."); got != nil {
		t.Errorf("Expected nil for text without a provenance list, got %v", got)
	}
}
