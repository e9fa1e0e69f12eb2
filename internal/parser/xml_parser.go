package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/seqops/virsam/internal/models"
)

// XMLParser handles streaming XML parsing of archive metadata documents:
// sample records and checklist definitions as served by the browser API.
type XMLParser struct {
	decoder *xml.Decoder
}

// NewXMLParser creates a new XML parser
func NewXMLParser(reader io.Reader) *XMLParser {
	decoder := xml.NewDecoder(reader)
	decoder.Strict = false // Handle malformed XML
	decoder.AutoClose = xml.HTMLAutoClose

	return &XMLParser{decoder: decoder}
}

// ParseSample returns the first sample record in the document.
// Browser responses wrap a single record in a SAMPLE_SET.
func (p *XMLParser) ParseSample() (*models.SourceSample, error) {
	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no SAMPLE element found in document")
		}
		if err != nil {
			return nil, err
		}

		if t, ok := token.(xml.StartElement); ok {
			if strings.ToUpper(t.Name.Local) == "SAMPLE" {
				return p.parseSample(t)
			}
		}
	}
}

func (p *XMLParser) parseSample(start xml.StartElement) (*models.SourceSample, error) {
	sample := &models.SourceSample{Attributes: models.NewAttributeSet()}

	// Extract attributes
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "accession":
			sample.Accession = attr.Value
		case "alias":
			sample.Alias = attr.Value
		}
	}

	// Parse nested elements
	for {
		token, err := p.decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "SAMPLE_NAME":
				p.parseSampleName(sample)
			case "SAMPLE_ATTRIBUTES":
				p.parseSampleAttributes(sample)
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "SAMPLE" {
				return sample, nil
			}
		}
	}
}

func (p *XMLParser) parseSampleName(sample *models.SourceSample) error {
	for {
		token, err := p.decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "TAXON_ID":
				if text, err := p.parseText(); err == nil {
					sample.TaxonID = text
				}
			case "SCIENTIFIC_NAME":
				if text, err := p.parseText(); err == nil {
					sample.ScientificName = text
				}
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "SAMPLE_NAME" {
				return nil
			}
		}
	}
}

func (p *XMLParser) parseSampleAttributes(sample *models.SourceSample) error {
	for {
		token, err := p.decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if strings.ToUpper(t.Name.Local) == "SAMPLE_ATTRIBUTE" {
				p.parseSampleAttribute(sample)
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "SAMPLE_ATTRIBUTES" {
				return nil
			}
		}
	}
}

func (p *XMLParser) parseSampleAttribute(sample *models.SourceSample) error {
	var tag, value, unit string

	for {
		token, err := p.decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "TAG":
				if text, err := p.parseText(); err == nil {
					tag = text
				}
			case "VALUE":
				if text, err := p.parseText(); err == nil {
					value = text
				}
			case "UNITS":
				if text, err := p.parseText(); err == nil {
					unit = text
				}
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "SAMPLE_ATTRIBUTE" {
				if tag != "" {
					sample.Attributes.Add(tag, value, unit)
				}
				return nil
			}
		}
	}
}

// ParseChecklist returns the checklist definition in the document.
// Browser responses wrap the definition in a CHECKLIST_SET; the field
// table lives under DESCRIPTOR, grouped into FIELD_GROUP blocks.
func (p *XMLParser) ParseChecklist() (*models.ChecklistSpec, error) {
	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no CHECKLIST element found in document")
		}
		if err != nil {
			return nil, err
		}

		if t, ok := token.(xml.StartElement); ok {
			if strings.ToUpper(t.Name.Local) == "CHECKLIST" {
				return p.parseChecklist(t)
			}
		}
	}
}

func (p *XMLParser) parseChecklist(start xml.StartElement) (*models.ChecklistSpec, error) {
	spec := &models.ChecklistSpec{Units: make(map[string]string)}

	for _, attr := range start.Attr {
		if attr.Name.Local == "accession" {
			spec.Accession = attr.Value
		}
	}

	for {
		token, err := p.decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "PRIMARY_ID":
				if text, err := p.parseText(); err == nil && spec.Accession == "" {
					spec.Accession = text
				}
			case "DESCRIPTOR":
				if err := p.parseChecklistDescriptor(spec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "CHECKLIST" {
				if spec.Name == "" {
					return nil, fmt.Errorf("checklist definition has no descriptor name")
				}
				return spec, nil
			}
		}
	}
}

func (p *XMLParser) parseChecklistDescriptor(spec *models.ChecklistSpec) error {
	for {
		token, err := p.decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "NAME":
				// Group and field names are consumed by their own
				// walks, so this is the checklist's own name.
				if text, err := p.parseText(); err == nil && spec.Name == "" {
					spec.Name = text
				}
			case "FIELD_GROUP":
				p.parseFieldGroup(spec)
			case "FIELD":
				p.parseField(spec)
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "DESCRIPTOR" {
				return nil
			}
		}
	}
}

func (p *XMLParser) parseFieldGroup(spec *models.ChecklistSpec) error {
	for {
		token, err := p.decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "NAME":
				// Group label, not a field
				p.parseText()
			case "FIELD":
				p.parseField(spec)
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "FIELD_GROUP" {
				return nil
			}
		}
	}
}

func (p *XMLParser) parseField(spec *models.ChecklistSpec) error {
	var name, obligation, unit string

	for {
		token, err := p.decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "NAME":
				if text, err := p.parseText(); err == nil && name == "" {
					name = text
				}
			case "UNITS":
				if u, err := p.parseFieldUnits(); err == nil {
					unit = u
				}
			case "MANDATORY":
				if text, err := p.parseText(); err == nil {
					obligation = text
				}
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "FIELD" {
				if name != "" {
					p.recordField(spec, name, obligation, unit)
				}
				return nil
			}
		}
	}
}

func (p *XMLParser) parseFieldUnits() (string, error) {
	var unit string

	for {
		token, err := p.decoder.Token()
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if strings.ToUpper(t.Name.Local) == "UNIT" {
				if text, err := p.parseText(); err == nil && unit == "" {
					unit = text
				}
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "UNITS" {
				return unit, nil
			}
		}
	}
}

// recordField classifies a field declaration into the spec. Obligation
// markers other than mandatory/recommended are ignored for this
// pipeline; units are recorded whenever declared.
func (p *XMLParser) recordField(spec *models.ChecklistSpec, name, obligation, unit string) {
	switch obligation {
	case models.ObligationMandatory:
		spec.Mandatory = append(spec.Mandatory, name)
	case models.ObligationRecommended:
		spec.Recommended = append(spec.Recommended, name)
	}
	if unit != "" {
		spec.Units[name] = unit
	}
}

// ParseReceipt returns the drop box response envelope: overall success
// flag, assigned accessions and any messages.
func (p *XMLParser) ParseReceipt() (*models.SubmissionReceipt, error) {
	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no RECEIPT element found in document")
		}
		if err != nil {
			return nil, err
		}

		if t, ok := token.(xml.StartElement); ok {
			if strings.ToUpper(t.Name.Local) == "RECEIPT" {
				return p.parseReceipt(t)
			}
		}
	}
}

func (p *XMLParser) parseReceipt(start xml.StartElement) (*models.SubmissionReceipt, error) {
	receipt := &models.SubmissionReceipt{}

	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "receiptDate":
			receipt.Date = attr.Value
		case "success":
			receipt.Success = attr.Value == "true"
		}
	}

	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			return receipt, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch strings.ToUpper(t.Name.Local) {
			case "SAMPLE":
				if receipt.Sample == "" {
					receipt.Sample = elementAttr(t, "accession")
				}
			case "PROJECT":
				if receipt.Project == "" {
					receipt.Project = elementAttr(t, "accession")
				}
			case "SUBMISSION":
				if receipt.Submission == "" {
					receipt.Submission = elementAttr(t, "accession")
				}
			case "ERROR":
				if text, err := p.parseText(); err == nil && text != "" {
					receipt.Errors = append(receipt.Errors, text)
				}
			case "INFO":
				if text, err := p.parseText(); err == nil && text != "" {
					receipt.Infos = append(receipt.Infos, text)
				}
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "RECEIPT" {
				return receipt, nil
			}
		}
	}
}

func elementAttr(start xml.StartElement, name string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func (p *XMLParser) parseText() (string, error) {
	token, err := p.decoder.Token()
	if err != nil {
		return "", err
	}

	if charData, ok := token.(xml.CharData); ok {
		return strings.TrimSpace(string(charData)), nil
	}
	return "", nil
}
