package reconcile

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/seqops/virsam/internal/errors"
	"github.com/seqops/virsam/internal/models"
)

func newSample(accession, taxonID, name string) *models.SourceSample {
	return &models.SourceSample{
		Accession:      accession,
		TaxonID:        taxonID,
		ScientificName: name,
		Attributes:     models.NewAttributeSet(),
	}
}

func TestMergeSingleSample(t *testing.T) {
	sample := newSample("ERS0000001", "9606", "Homo sapiens")
	sample.Attributes.Add(ReservedChecklistTag, "ERC000011", "")
	sample.Attributes.Add("project name", "DTOL", "")
	sample.Attributes.Add("geographic location (latitude)", "52.1", "DD")

	result, err := Merge([]*models.SourceSample{sample})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if result.TaxonID != "9606" || result.ScientificName != "Homo sapiens" {
		t.Errorf("Taxonomy not carried: %s, %s", result.TaxonID, result.ScientificName)
	}
	if result.Attributes.Has(ReservedChecklistTag) {
		t.Error("Reserved checklist tag should not survive the merge")
	}
	if result.Attributes.Len() != 2 {
		t.Errorf("Expected 2 merged attributes, got %d", result.Attributes.Len())
	}
	if len(result.Checklists) != 1 || result.Checklists[0] != "ERC000011" {
		t.Errorf("Expected observed checklist ERC000011, got %v", result.Checklists)
	}
}

func TestMergeIntersective(t *testing.T) {
	a := newSample("ERS0000001", "9606", "Homo sapiens")
	a.Attributes.Add("A", "1", "")
	a.Attributes.Add("B", "x", "")

	b := newSample("ERS0000002", "9606", "Homo sapiens")
	b.Attributes.Add("A", "1", "")
	b.Attributes.Add("B", "y", "")

	result, err := Merge([]*models.SourceSample{a, b})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// Only A survives: B exists everywhere but its values diverge.
	tags := result.Attributes.Tags()
	if len(tags) != 1 || tags[0] != "A" {
		t.Fatalf("Expected only [A], got %v", tags)
	}
	if attr, _ := result.Attributes.Get("A"); attr.Value != "1" {
		t.Errorf("Expected value 1, got %q", attr.Value)
	}
}

func TestMergeCommonAttributes(t *testing.T) {
	a := newSample("ERS0000001", "9606", "Homo sapiens")
	a.Attributes.Add("project name", "DTOL", "")
	a.Attributes.Add("collection date", "2021-03-01", "")
	a.Attributes.Add("only in first", "x", "")

	b := newSample("ERS0000002", "9606", "Homo sapiens")
	b.Attributes.Add("collection date", "2021-03-01", "")
	b.Attributes.Add("project name", "DTOL", "")
	b.Attributes.Add("only in second", "y", "")

	result, err := Merge([]*models.SourceSample{a, b})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	tags := result.Attributes.Tags()
	expected := []string{"project name", "collection date"}
	if len(tags) != len(expected) {
		t.Fatalf("Expected tags %v, got %v", expected, tags)
	}
	for i := range expected {
		if tags[i] != expected[i] {
			t.Errorf("Tag %d: expected %q, got %q", i, expected[i], tags[i])
		}
	}
}

func TestMergeUnitDisagreementDrops(t *testing.T) {
	a := newSample("ERS0000001", "9606", "Homo sapiens")
	a.Attributes.Add("geographic location (latitude)", "52.1", "DD")
	a.Attributes.Add("sample weight", "3", "g")
	b := newSample("ERS0000002", "9606", "Homo sapiens")
	b.Attributes.Add("geographic location (latitude)", "52.1", "DD")
	b.Attributes.Add("sample weight", "3", "kg")

	result, err := Merge([]*models.SourceSample{a, b})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	attr, ok := result.Attributes.Get("geographic location (latitude)")
	if !ok {
		t.Fatal("Identical attribute missing from merge")
	}
	if attr.Unit != "DD" {
		t.Errorf("Expected unit DD, got %q", attr.Unit)
	}

	if result.Attributes.Has("sample weight") {
		t.Error("Attribute with diverging units should be dropped")
	}
}

func TestMergeObservedChecklists(t *testing.T) {
	a := newSample("ERS0000001", "9606", "Homo sapiens")
	a.Attributes.Add(ReservedChecklistTag, "ERC000053", "")
	b := newSample("ERS0000002", "9606", "Homo sapiens")
	b.Attributes.Add(ReservedChecklistTag, "ERC000011", "")
	c := newSample("ERS0000003", "9606", "Homo sapiens")
	c.Attributes.Add(ReservedChecklistTag, "ERC000053", "")

	result, err := Merge([]*models.SourceSample{a, b, c})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	expected := []string{"ERC000053", "ERC000011"}
	if len(result.Checklists) != len(expected) {
		t.Fatalf("Expected checklists %v, got %v", expected, result.Checklists)
	}
	for i := range expected {
		if result.Checklists[i] != expected[i] {
			t.Errorf("Checklist %d: expected %q, got %q", i, expected[i], result.Checklists[i])
		}
	}
}

func TestMergeTaxonomyMismatch(t *testing.T) {
	a := newSample("ERS0000001", "9606", "Homo sapiens")
	b := newSample("ERS0000002", "10090", "Mus musculus")

	_, err := Merge([]*models.SourceSample{a, b})
	if err == nil {
		t.Fatal("Expected taxonomy mismatch error")
	}
	if !errors.IsKind(err, errors.KindTaxonomy) {
		t.Errorf("Expected KindTaxonomy, got %v", errors.GetKind(err))
	}

	var mismatch *TaxonomyMismatchError
	if !stderrors.As(err, &mismatch) {
		t.Fatalf("Expected TaxonomyMismatchError, got %T", err)
	}
	if mismatch.Accession != "ERS0000002" {
		t.Errorf("Expected offending sample ERS0000002, got %s", mismatch.Accession)
	}
	if !strings.Contains(err.Error(), "Mus musculus") || !strings.Contains(err.Error(), "Homo sapiens") {
		t.Errorf("Error should name both taxonomies: %v", err)
	}
}

func TestMergeScientificNameMismatch(t *testing.T) {
	a := newSample("ERS0000001", "9606", "Homo sapiens")
	b := newSample("ERS0000002", "9606", "Homo neanderthalensis")

	_, err := Merge([]*models.SourceSample{a, b})
	if err == nil {
		t.Fatal("Expected mismatch error for differing scientific names")
	}
}

func TestMergeEmpty(t *testing.T) {
	_, err := Merge(nil)
	if err == nil {
		t.Fatal("Expected error for empty sample set")
	}
	if !errors.IsKind(err, errors.KindValidation) {
		t.Errorf("Expected KindValidation, got %v", errors.GetKind(err))
	}
}

func TestMergeSourcesOrder(t *testing.T) {
	a := newSample("ERS0000002", "9606", "Homo sapiens")
	b := newSample("ERS0000001", "9606", "Homo sapiens")

	result, err := Merge([]*models.SourceSample{a, b})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if len(result.Sources) != 2 || result.Sources[0] != "ERS0000002" || result.Sources[1] != "ERS0000001" {
		t.Errorf("Sources should keep input order, got %v", result.Sources)
	}
}

func TestSelectChecklist(t *testing.T) {
	tests := []struct {
		name        string
		observed    []string
		override    string
		checklist   string
		wantWarning bool
	}{
		{"explicit override wins", []string{"ERC000053"}, "ERC000047", "ERC000047", false},
		{"single observed", []string{"ERC000053"}, "", "ERC000053", false},
		{"none observed", nil, "", "ERC000011", true},
		{"multiple observed", []string{"ERC000053", "ERC000011"}, "", "ERC000011", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectChecklist(tt.observed, tt.override, "ERC000011")
			if sel.Checklist != tt.checklist {
				t.Errorf("Expected checklist %s, got %s", tt.checklist, sel.Checklist)
			}
			if tt.wantWarning && sel.Warning == "" {
				t.Error("Expected a warning")
			}
			if !tt.wantWarning && sel.Warning != "" {
				t.Errorf("Unexpected warning: %s", sel.Warning)
			}
		})
	}
}

func TestSelectChecklistWarningNamesCandidates(t *testing.T) {
	sel := SelectChecklist([]string{"ERC000053", "ERC000012"}, "", "ERC000011")
	if !strings.Contains(sel.Warning, "ERC000053") || !strings.Contains(sel.Warning, "ERC000012") {
		t.Errorf("Warning should list observed checklists: %s", sel.Warning)
	}
}
