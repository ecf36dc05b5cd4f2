package oai

import (
	"encoding/xml"
	"testing"
)

const listRecords = `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <responseDate>2020-06-30T10:00:00Z</responseDate>
  <ListRecords>
    <record>
      <header>
        <identifier>oai:RePEc:nbr:nberwo:26867</identifier>
        <datestamp>2020-03-30</datestamp>
        <setSpec>RePEc:nbr:nberwo</setSpec>
      </header>
      <metadata>
        <oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/" xmlns:dc="http://purl.org/dc/elements/1.1/">
          <dc:title>Macroeconomics of the Coronavirus</dc:title>
          <dc:creator>Doe, Jane</dc:creator>
          <dc:description>We model the spread.</dc:description>
        </oai_dc:dc>
      </metadata>
    </record>
    <record>
      <header status="deleted">
        <identifier>oai:RePEc:nbr:nberwo:1</identifier>
        <datestamp>2020-03-31</datestamp>
      </header>
    </record>
    <resumptionToken cursor="0" completeListSize="1200">token-1</resumptionToken>
  </ListRecords>
</OAI-PMH>`

func TestResponse(t *testing.T) {
	var resp Response
	if err := xml.Unmarshal([]byte(listRecords), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.HasError() || resp.IsEmpty() {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if got := len(resp.ListRecords.Records); got != 2 {
		t.Fatalf("got %d records, want 2", got)
	}
	token := resp.ListRecords.ResumptionToken
	if token.Value != "token-1" || token.CompleteListSize != 1200 {
		t.Fatalf("unexpected token: %+v", token)
	}
	var rec Record
	if err := xml.Unmarshal(resp.ListRecords.Records[0].Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Handle() != "RePEc:nbr:nberwo:26867" {
		t.Errorf("got handle %q", rec.Handle())
	}
	if rec.Metadata.Dc.Title != "Macroeconomics of the Coronavirus" {
		t.Errorf("got title %q", rec.Metadata.Dc.Title)
	}
	if rec.IsDeleted() {
		t.Errorf("record should not be deleted")
	}
	var deleted Record
	if err := xml.Unmarshal(resp.ListRecords.Records[1].Bytes(), &deleted); err != nil {
		t.Fatal(err)
	}
	if !deleted.IsDeleted() {
		t.Errorf("record should be deleted")
	}
}

func TestResponseNoRecordsMatch(t *testing.T) {
	var resp Response
	doc := `<OAI-PMH><error code="noRecordsMatch">nothing</error></OAI-PMH>`
	if err := xml.Unmarshal([]byte(doc), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.IsEmpty() || resp.HasError() {
		t.Fatalf("want empty, got %+v", resp.Error)
	}
	doc = `<OAI-PMH><error code="badArgument">bad</error></OAI-PMH>`
	resp = Response{}
	if err := xml.Unmarshal([]byte(doc), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.HasError() {
		t.Fatalf("want error")
	}
}
