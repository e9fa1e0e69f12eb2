package reconcile

import (
	"fmt"
	"strings"

	"github.com/seqops/virsam/internal/errors"
	"github.com/seqops/virsam/internal/models"
)

// ReservedChecklistTag marks the attribute the archive uses to record
// which checklist a sample was validated against. It is metadata about
// the record, not a biological property, so the merge pulls it out into
// a dedicated field instead of treating it as a regular attribute.
const ReservedChecklistTag = "ENA-CHECKLIST"

// MergeResult is the reconciled attribute base of a virtual sample.
type MergeResult struct {
	TaxonID        string
	ScientificName string
	Attributes     *models.AttributeSet // attributes shared by every source, reserved tag excluded
	Checklists     []string             // distinct checklist accessions observed, first-seen order
	Sources        []string             // source accessions in input order
}

// TaxonomyMismatchError reports a source sample whose taxonomy differs
// from the first sample in the set.
type TaxonomyMismatchError struct {
	Accession   string
	GotTaxonID  string
	GotName     string
	WantTaxonID string
	WantName    string
}

func (e *TaxonomyMismatchError) Error() string {
	return fmt.Sprintf("sample %s has a different taxonomy (%s, %s) than the first sample (%s, %s); a virtual sample can only combine samples with the same taxonomy",
		e.Accession, e.GotTaxonID, e.GotName, e.WantTaxonID, e.WantName)
}

// Merge reconciles source samples into a single attribute base. The
// taxonomy of the first sample is authoritative: any sample reporting a
// different taxon ID or scientific name aborts the merge. The merge is
// strictly intersective: an attribute survives only when every source
// carries the same tag with an identical value and unit. Anything held
// by a subset, or held everywhere with diverging values, is dropped.
// Order follows the first sample's attribute order.
func Merge(samples []*models.SourceSample) (*MergeResult, error) {
	const op errors.Op = "reconcile.Merge"

	if len(samples) == 0 {
		return nil, errors.E(op, errors.KindValidation, fmt.Errorf("no source samples to merge"))
	}

	first := samples[0]
	result := &MergeResult{
		TaxonID:        first.TaxonID,
		ScientificName: first.ScientificName,
		Attributes:     models.NewAttributeSet(),
	}

	seen := make(map[string]bool)
	for _, sample := range samples {
		result.Sources = append(result.Sources, sample.Accession)

		if sample.TaxonID != first.TaxonID || sample.ScientificName != first.ScientificName {
			return nil, errors.E(op, errors.KindTaxonomy, &TaxonomyMismatchError{
				Accession:   sample.Accession,
				GotTaxonID:  sample.TaxonID,
				GotName:     sample.ScientificName,
				WantTaxonID: first.TaxonID,
				WantName:    first.ScientificName,
			})
		}

		if attr, ok := sample.Attributes.Get(ReservedChecklistTag); ok && attr.Value != "" {
			if !seen[attr.Value] {
				seen[attr.Value] = true
				result.Checklists = append(result.Checklists, attr.Value)
			}
		}
	}

	for _, attr := range first.Attributes.All() {
		if attr.Tag == ReservedChecklistTag {
			continue
		}
		shared := true
		for _, other := range samples[1:] {
			got, ok := other.Attributes.Get(attr.Tag)
			if !ok || got.Value != attr.Value || got.Unit != attr.Unit {
				shared = false
				break
			}
		}
		if shared {
			result.Attributes.Add(attr.Tag, attr.Value, attr.Unit)
		}
	}

	return result, nil
}

// Selection is the outcome of the checklist selection policy.
type Selection struct {
	Checklist string
	Warning   string // empty when the choice was unambiguous
}

// SelectChecklist decides which checklist the virtual sample is built
// against. An explicit override always wins. Otherwise a single
// observed checklist is used as-is; zero or several observed checklists
// fall back to the default with a warning the caller is expected to
// surface.
func SelectChecklist(observed []string, override, fallback string) Selection {
	if override != "" {
		return Selection{Checklist: override}
	}

	switch len(observed) {
	case 1:
		return Selection{Checklist: observed[0]}
	case 0:
		return Selection{
			Checklist: fallback,
			Warning:   fmt.Sprintf("no checklist recorded on the source samples; using default %s", fallback),
		}
	default:
		return Selection{
			Checklist: fallback,
			Warning: fmt.Sprintf("source samples declare different checklists (%s); using default %s",
				strings.Join(observed, ", "), fallback),
		}
	}
}
