package receipt

import (
	"bytes"
	"regexp"

	"github.com/seqops/virsam/internal/errors"
	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/parser"
)

// Accession patterns in drop box responses. The success shape is the
// accession attribute on the returned sample object; the error shape
// appears inside "already exists" message text. The error pattern is
// best effort: the archive does not formally specify its message
// grammar, so the match is regex-shaped rather than schema-validated.
var (
	successPattern = regexp.MustCompile(`<SAMPLE accession="(ERS\d+)"`)
	errorPattern   = regexp.MustCompile(`accession: "(ERS\d+)"`)
)

// Outcome is what a submission response says about the sample.
type Outcome struct {
	Accession string
	Existing  bool // recovered from an error message about a prior record
}

// ExtractSampleAccession scans raw response text for a sample
// accession. Success-shaped announcements take precedence over
// error-shaped ones. The boolean is false when no accession is present
// at all, which is a legitimate outcome the caller branches on rather
// than an error.
func ExtractSampleAccession(body []byte) (Outcome, bool) {
	if m := successPattern.FindSubmatch(body); m != nil {
		return Outcome{Accession: string(m[1])}, true
	}
	if m := errorPattern.FindSubmatch(body); m != nil {
		return Outcome{Accession: string(m[1]), Existing: true}, true
	}
	return Outcome{}, false
}

// Parse decodes a drop box receipt envelope. A body without a RECEIPT
// element is malformed and fatal for the caller.
func Parse(body []byte) (*models.SubmissionReceipt, error) {
	const op errors.Op = "receipt.Parse"

	rec, err := parser.NewXMLParser(bytes.NewReader(body)).ParseReceipt()
	if err != nil {
		return nil, errors.E(op, errors.KindReceipt, err)
	}
	return rec, nil
}
