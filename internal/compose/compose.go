package compose

import (
	"fmt"
	"strings"

	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/reconcile"
)

// PlaceholderValue fills mandatory checklist fields no source sample
// provides, using the INSDC missing-value vocabulary.
const PlaceholderValue = "missing: synthetic construct"

// Options control virtual sample composition.
type Options struct {
	Alias  string // empty derives one from the source accessions
	Center string // optional submitting center name
}

// DefaultAlias is the alias used when none is provided.
func DefaultAlias(sources []string) string {
	return "virtual_sample_" + strings.Join(sources, "_")
}

// Compose assembles a virtual sample from the reconciled attribute base
// and the resolved checklist. Attribute order is fixed: the checklist
// marker first, then the shared attributes in reconciled order, then
// placeholders for unmet mandatory fields in checklist order. Existing
// values are never overwritten.
func Compose(merged *reconcile.MergeResult, spec *models.ChecklistSpec, opts Options) *models.VirtualSample {
	alias := opts.Alias
	if alias == "" {
		alias = DefaultAlias(merged.Sources)
	}

	vs := &models.VirtualSample{
		Alias:          alias,
		CenterName:     opts.Center,
		TaxonID:        merged.TaxonID,
		ScientificName: merged.ScientificName,
		Checklist:      spec.Accession,
		Title:          fmt.Sprintf("Virtual sample of %s", merged.ScientificName),
		Description:    description(merged.Sources),
		Attributes:     models.NewAttributeSet(),
		Sources:        append([]string(nil), merged.Sources...),
	}

	vs.Attributes.Add(reconcile.ReservedChecklistTag, spec.Accession, "")

	for _, attr := range merged.Attributes.All() {
		vs.Attributes.Add(attr.Tag, attr.Value, attr.Unit)
	}

	// Placeholders never carry a unit, even when the checklist declares one.
	for _, field := range spec.Mandatory {
		if !vs.Attributes.Has(field) {
			vs.Attributes.Add(field, PlaceholderValue, "")
		}
	}

	return vs
}

// descriptionMarker precedes the provenance list inside a virtual
// sample description. SourcesFromDescription depends on it.
const descriptionMarker = "composed of physical samples "

func description(sources []string) string {
	return "This sample is a virtual sample of assembled raw reads from multiple physical " +
		"samples of genome and is " + descriptionMarker + strings.Join(sources, ", ") + "."
}

// SourcesFromDescription recovers the contributing accessions from a
// virtual sample description. Returns nil when the text carries no
// provenance list.
func SourcesFromDescription(desc string) []string {
	idx := strings.Index(desc, descriptionMarker)
	if idx < 0 {
		return nil
	}
	list := strings.TrimSuffix(strings.TrimSpace(desc[idx+len(descriptionMarker):]), ".")
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ", ")
	sources := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sources = append(sources, part)
		}
	}
	return sources
}
