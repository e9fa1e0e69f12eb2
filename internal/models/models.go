package models

// Attribute is a single tag/value pair on a sample record, with an
// optional unit of measurement. An empty Unit means the attribute is
// unit-less.
type Attribute struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// AttributeSet is an ordered collection of attributes, unique per tag.
// Archive records are order-sensitive, so iteration order is insertion
// order. Sets are built once during parsing or composition and not
// mutated afterwards.
type AttributeSet struct {
	attrs []Attribute
	index map[string]int
}

// NewAttributeSet creates an empty attribute set.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{index: make(map[string]int)}
}

// Add appends an attribute. It returns false without modifying the set
// when the tag is already present.
func (s *AttributeSet) Add(tag, value, unit string) bool {
	if _, exists := s.index[tag]; exists {
		return false
	}
	s.index[tag] = len(s.attrs)
	s.attrs = append(s.attrs, Attribute{Tag: tag, Value: value, Unit: unit})
	return true
}

// Get returns the attribute for the given tag.
func (s *AttributeSet) Get(tag string) (Attribute, bool) {
	i, ok := s.index[tag]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Has reports whether the tag is present.
func (s *AttributeSet) Has(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

// Len returns the number of attributes.
func (s *AttributeSet) Len() int {
	return len(s.attrs)
}

// All returns the attributes in insertion order. The returned slice is
// a copy; callers cannot modify the set through it.
func (s *AttributeSet) All() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Tags returns the tag names in insertion order.
func (s *AttributeSet) Tags() []string {
	tags := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		tags[i] = a.Tag
	}
	return tags
}

// SourceSample is an existing physical sample fetched from the archive.
// Taxon identifiers are kept as text exactly as the archive reports them.
type SourceSample struct {
	Accession      string        `json:"accession"`
	Alias          string        `json:"alias,omitempty"`
	TaxonID        string        `json:"taxon_id"`
	ScientificName string        `json:"scientific_name"`
	Attributes     *AttributeSet `json:"-"`
}

// ChecklistField is one field declaration from a checklist definition.
type ChecklistField struct {
	Name       string `json:"name"`
	Obligation string `json:"obligation"`
	Unit       string `json:"unit,omitempty"`
}

// Field obligation markers as declared by the archive.
const (
	ObligationMandatory   = "mandatory"
	ObligationRecommended = "recommended"
)

// ChecklistSpec is the resolved form of a checklist definition: which
// fields a conforming sample must or should carry, and their units.
// Specs are derived per run and never persisted.
type ChecklistSpec struct {
	Accession   string            `json:"accession"`
	Name        string            `json:"name"`
	Mandatory   []string          `json:"mandatory"`
	Recommended []string          `json:"recommended"`
	Units       map[string]string `json:"units,omitempty"`
}

// IsMandatory reports whether the named field is mandatory.
func (c *ChecklistSpec) IsMandatory(name string) bool {
	for _, f := range c.Mandatory {
		if f == name {
			return true
		}
	}
	return false
}

// UnitFor returns the declared unit for a field, or "" when the field
// is unit-less.
func (c *ChecklistSpec) UnitFor(name string) string {
	return c.Units[name]
}

// Fields flattens the spec into per-field declarations, mandatory
// fields first, keeping checklist order within each group.
func (c *ChecklistSpec) Fields() []ChecklistField {
	fields := make([]ChecklistField, 0, len(c.Mandatory)+len(c.Recommended))
	for _, name := range c.Mandatory {
		fields = append(fields, ChecklistField{Name: name, Obligation: ObligationMandatory, Unit: c.Units[name]})
	}
	for _, name := range c.Recommended {
		fields = append(fields, ChecklistField{Name: name, Obligation: ObligationRecommended, Unit: c.Units[name]})
	}
	return fields
}

// VirtualSample is the derived sample record composed from several
// physical samples' shared metadata. Composed once per run and never
// mutated afterwards.
type VirtualSample struct {
	Alias          string        `json:"alias"`
	CenterName     string        `json:"center_name,omitempty"`
	TaxonID        string        `json:"taxon_id"`
	ScientificName string        `json:"scientific_name"`
	Checklist      string        `json:"checklist,omitempty"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Attributes     *AttributeSet `json:"-"`
	Sources        []string      `json:"sources"`
}

// SubmissionReceipt is the parsed drop box response envelope. The raw
// response text is persisted separately; this is the structured view.
type SubmissionReceipt struct {
	Date       string   `json:"date,omitempty"`
	Success    bool     `json:"success"`
	Sample     string   `json:"sample,omitempty"`     // sample accession, if assigned
	Project    string   `json:"project,omitempty"`    // project accession, if assigned
	Submission string   `json:"submission,omitempty"` // submission accession, if assigned
	Errors     []string `json:"errors,omitempty"`
	Infos      []string `json:"infos,omitempty"`
}
