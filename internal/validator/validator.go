package validator

import (
	"fmt"
	"regexp"

	"github.com/seqops/virsam/internal/compose"
	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/reconcile"
)

// Accession shapes accepted on the command line. Sample records are
// addressed either by their ERS accession or their BioSamples identifier.
var (
	samplePattern    = regexp.MustCompile(`^(?:ERS|SAMEA)\d+$`)
	projectPattern   = regexp.MustCompile(`^PRJEB\d+$`)
	checklistPattern = regexp.MustCompile(`^ERC\d{6}$`)
)

// IsSampleAccession reports whether s names a sample record.
func IsSampleAccession(s string) bool { return samplePattern.MatchString(s) }

// IsProjectAccession reports whether s names a project record.
func IsProjectAccession(s string) bool { return projectPattern.MatchString(s) }

// IsChecklistAccession reports whether s names a checklist definition.
func IsChecklistAccession(s string) bool { return checklistPattern.MatchString(s) }

// AccessionError describes an input accession that does not match the
// expected shape.
type AccessionError struct {
	Accession string
	Want      string
}

func (e *AccessionError) Error() string {
	return fmt.Sprintf("%q is not a valid %s accession", e.Accession, e.Want)
}

// CheckSampleAccessions verifies that every accession names a sample record
// before any network round trip happens.
func CheckSampleAccessions(accessions ...string) error {
	for _, a := range accessions {
		if !IsSampleAccession(a) {
			return &AccessionError{Accession: a, Want: "sample"}
		}
	}
	return nil
}

// CheckProjectAccessions verifies that every accession names a project record.
func CheckProjectAccessions(accessions ...string) error {
	for _, a := range accessions {
		if !IsProjectAccession(a) {
			return &AccessionError{Accession: a, Want: "project"}
		}
	}
	return nil
}

// CheckChecklistAccession verifies that accession names a checklist
// definition.
func CheckChecklistAccession(accession string) error {
	if !IsChecklistAccession(accession) {
		return &AccessionError{Accession: accession, Want: "checklist"}
	}
	return nil
}

// Validator checks composed sample documents against their checklist.
type Validator struct {
	config ValidationConfig
}

// ValidationConfig holds validation configuration.
type ValidationConfig struct {
	RequireChecklistMarker bool
	ReportRecommended      bool
	ReportPlaceholders     bool
}

// NewValidator creates a new validator.
func NewValidator(config ValidationConfig) *Validator {
	return &Validator{
		config: config,
	}
}

// DefaultValidator creates a validator with default settings.
func DefaultValidator() *Validator {
	return &Validator{
		config: ValidationConfig{
			RequireChecklistMarker: true,
			ReportRecommended:      true,
			ReportPlaceholders:     true,
		},
	}
}

// ValidationResult contains validation results.
type ValidationResult struct {
	IsValid   bool                `json:"is_valid"`
	Checklist string              `json:"checklist,omitempty"`
	Errors    []ValidationError   `json:"errors,omitempty"`
	Warnings  []ValidationWarning `json:"warnings,omitempty"`
	Stats     ValidationStats     `json:"stats"`
}

// ValidationError represents a validation error.
type ValidationError struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationWarning represents a validation warning.
type ValidationWarning struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	FieldsChecked      int `json:"fields_checked"`
	MandatoryChecked   int `json:"mandatory_checked"`
	RecommendedChecked int `json:"recommended_checked"`
}

// ValidateSample checks a composed sample against the checklist definition it
// declares. Content problems are collected on the result rather than returned
// as an error, so callers can present all of them at once. A nil spec limits
// the check to the identity fields.
func (v *Validator) ValidateSample(sample *models.VirtualSample, spec *models.ChecklistSpec) (*ValidationResult, error) {
	result := &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Stats:    ValidationStats{},
	}

	v.validateIdentity(sample, result)

	if spec != nil {
		result.Checklist = spec.Accession
		v.validateChecklistMarker(sample, spec, result)
		v.validateMandatory(sample, spec, result)
		v.validateRecommended(sample, spec, result)
		v.validateUnits(sample, spec, result)
	}

	// Set overall validity
	result.IsValid = len(result.Errors) == 0

	return result, nil
}

// validateIdentity checks the fields every sample record must carry.
func (v *Validator) validateIdentity(sample *models.VirtualSample, result *ValidationResult) {
	if sample.Alias == "" {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "MISSING_ALIAS",
			Field:   "alias",
			Message: "sample records must carry an alias",
		})
	}
	if sample.TaxonID == "" {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "MISSING_TAXONOMY",
			Field:   "TAXON_ID",
			Message: "TAXON_ID is required for sample records",
		})
	}
	if sample.ScientificName == "" {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "MISSING_TAXONOMY",
			Field:   "SCIENTIFIC_NAME",
			Message: "SCIENTIFIC_NAME is required for sample records",
		})
	}
}

// validateChecklistMarker checks that the sample declares the checklist it
// was composed against.
func (v *Validator) validateChecklistMarker(sample *models.VirtualSample, spec *models.ChecklistSpec, result *ValidationResult) {
	if !v.config.RequireChecklistMarker {
		return
	}

	attr, ok := sample.Attributes.Get(reconcile.ReservedChecklistTag)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "MISSING_CHECKLIST_MARKER",
			Field:   reconcile.ReservedChecklistTag,
			Message: fmt.Sprintf("sample does not declare checklist %s", spec.Accession),
		})
		return
	}
	if attr.Value != spec.Accession {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "CHECKLIST_MISMATCH",
			Field:   reconcile.ReservedChecklistTag,
			Message: fmt.Sprintf("sample declares checklist %s but was checked against %s", attr.Value, spec.Accession),
		})
	}
}

// validateMandatory checks that every mandatory checklist field has a value.
func (v *Validator) validateMandatory(sample *models.VirtualSample, spec *models.ChecklistSpec, result *ValidationResult) {
	for _, tag := range spec.Mandatory {
		result.Stats.MandatoryChecked++

		attr, ok := sample.Attributes.Get(tag)
		if !ok {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "MISSING_MANDATORY_FIELD",
				Field:   tag,
				Message: fmt.Sprintf("checklist %s requires %q", spec.Accession, tag),
			})
			continue
		}
		if attr.Value == "" {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "EMPTY_MANDATORY_FIELD",
				Field:   tag,
				Message: fmt.Sprintf("%q has no value", tag),
			})
			continue
		}
		if v.config.ReportPlaceholders && attr.Value == compose.PlaceholderValue {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Type:    "PLACEHOLDER_VALUE",
				Field:   tag,
				Message: fmt.Sprintf("%q carries the placeholder value; replace it if the real value is known", tag),
			})
		}
	}
}

// validateRecommended reports recommended checklist fields the sample does
// not cover.
func (v *Validator) validateRecommended(sample *models.VirtualSample, spec *models.ChecklistSpec, result *ValidationResult) {
	if !v.config.ReportRecommended {
		return
	}

	for _, tag := range spec.Recommended {
		result.Stats.RecommendedChecked++
		if !sample.Attributes.Has(tag) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Type:    "RECOMMENDED_FIELD_MISSING",
				Field:   tag,
				Message: fmt.Sprintf("checklist %s recommends %q", spec.Accession, tag),
			})
		}
	}
}

// validateUnits checks attribute units against the ones the checklist
// declares. Placeholder values never carry a unit, so they are skipped.
func (v *Validator) validateUnits(sample *models.VirtualSample, spec *models.ChecklistSpec, result *ValidationResult) {
	for _, attr := range sample.Attributes.All() {
		result.Stats.FieldsChecked++

		want := spec.UnitFor(attr.Tag)
		if want == "" || attr.Value == compose.PlaceholderValue {
			continue
		}
		if attr.Unit != want {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Type:    "UNIT_MISMATCH",
				Field:   attr.Tag,
				Message: fmt.Sprintf("checklist %s expects unit %q for %q, got %q", spec.Accession, want, attr.Tag, attr.Unit),
			})
		}
	}
}
