package receipt

import (
	"testing"

	"github.com/seqops/virsam/internal/errors"
)

const successReceipt = `<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2023-06-02T11:18:32.058+01:00" success="true">
     <SAMPLE accession="ERS15565498" alias="virtual_sample_A_B" status="PRIVATE"/>
     <SUBMISSION accession="ERA23648400"/>
</RECEIPT>`

const existsReceipt = `<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2023-06-02T11:20:01.141+01:00" success="false">
     <MESSAGES>
          <ERROR>In sample, alias:"virtual_sample_A_B". The object being added already exists in the submission account with accession: "ERS15565498".</ERROR>
     </MESSAGES>
</RECEIPT>`

const failedReceipt = `<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2023-06-02T11:25:44.002+01:00" success="false">
     <MESSAGES>
          <ERROR>In sample, alias:"virtual_sample_A_B". Missing mandatory field collection date.</ERROR>
     </MESSAGES>
</RECEIPT>`

func TestExtractSampleAccessionSuccess(t *testing.T) {
	outcome, found := ExtractSampleAccession([]byte(successReceipt))
	if !found {
		t.Fatal("Expected an accession in the success receipt")
	}
	if outcome.Accession != "ERS15565498" {
		t.Errorf("Expected ERS15565498, got %s", outcome.Accession)
	}
	if outcome.Existing {
		t.Error("Success receipt should not be flagged as existing")
	}
}

func TestExtractSampleAccessionFromError(t *testing.T) {
	outcome, found := ExtractSampleAccession([]byte(existsReceipt))
	if !found {
		t.Fatal("Expected an accession in the error message")
	}
	if outcome.Accession != "ERS15565498" {
		t.Errorf("Expected ERS15565498, got %s", outcome.Accession)
	}
	if !outcome.Existing {
		t.Error("Error-shaped accession should be flagged as existing")
	}
}

func TestExtractSampleAccessionPrecedence(t *testing.T) {
	// Both shapes present: the success shape wins.
	body := []byte(`<RECEIPT success="true">
     <SAMPLE accession="ERS0000001" alias="a"/>
     <MESSAGES><INFO>previous run reported accession: "ERS0000002"</INFO></MESSAGES>
</RECEIPT>`)

	outcome, found := ExtractSampleAccession(body)
	if !found {
		t.Fatal("Expected an accession")
	}
	if outcome.Accession != "ERS0000001" {
		t.Errorf("Success shape should take precedence, got %s", outcome.Accession)
	}
	if outcome.Existing {
		t.Error("Success-shaped match should not be flagged as existing")
	}
}

func TestExtractSampleAccessionAbsent(t *testing.T) {
	if _, found := ExtractSampleAccession([]byte(failedReceipt)); found {
		t.Error("A failure without prior record must report no accession")
	}
}

func TestParse(t *testing.T) {
	rec, err := Parse([]byte(successReceipt))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !rec.Success || rec.Sample != "ERS15565498" {
		t.Errorf("Unexpected receipt: %+v", rec)
	}
}

func TestParseFailureMessages(t *testing.T) {
	rec, err := Parse([]byte(failedReceipt))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if rec.Success {
		t.Error("Expected success flag unset")
	}
	if len(rec.Errors) != 1 {
		t.Errorf("Expected the error message collected, got %v", rec.Errors)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("502 Bad Gateway"))
	if err == nil {
		t.Fatal("Expected error for malformed receipt")
	}
	if !errors.IsKind(err, errors.KindReceipt) {
		t.Errorf("Expected KindReceipt, got %v", errors.GetKind(err))
	}
}
