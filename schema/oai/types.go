// Package oai contains OAI-PMH response types, with Dublin Core metadata.
package oai

import (
	"encoding/xml"
	"strings"
)

// Record is a single OAI-PMH record in oai_dc format.
type Record struct {
	XMLName xml.Name `xml:"record"`
	Header  struct {
		Status     string   `xml:"status,attr"`
		Identifier string   `xml:"identifier"` // oai:RePEc:nbr:nberwo:26867, ...
		Datestamp  string   `xml:"datestamp"`  // 2020-04-13, 2020-04-14T08:01:02Z, ...
		SetSpec    []string `xml:"setSpec"`
	} `xml:"header"`
	Metadata struct {
		Dc struct {
			Title       string   `xml:"title"`
			Creator     []string `xml:"creator"`
			Subject     []string `xml:"subject"`
			Description []string `xml:"description"`
			Publisher   []string `xml:"publisher"`
			Date        []string `xml:"date"`
			Type        []string `xml:"type"`
			Identifier  []string `xml:"identifier"`
			Language    string   `xml:"language"`
		} `xml:"dc"`
	} `xml:"metadata"`
}

// IsDeleted returns true for tombstone records.
func (r *Record) IsDeleted() bool {
	return r.Header.Status == "deleted"
}

// Handle returns the OAI identifier without the "oai:" scheme prefix.
func (r *Record) Handle() string {
	return strings.TrimPrefix(strings.TrimSpace(r.Header.Identifier), "oai:")
}

// ResumptionToken marks a partial list response.
type ResumptionToken struct {
	Value            string `xml:",chardata"`
	Cursor           int64  `xml:"cursor,attr"`
	CompleteListSize int64  `xml:"completeListSize,attr"`
}

// Response is a ListRecords response. Records are kept as raw inner XML, so
// they can be written out unchanged.
type Response struct {
	XMLName      xml.Name `xml:"OAI-PMH"`
	ResponseDate string   `xml:"responseDate"`
	Error        struct {
		Code    string `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"error"`
	ListRecords struct {
		Records         []RawRecord     `xml:"record"`
		ResumptionToken ResumptionToken `xml:"resumptionToken"`
	} `xml:"ListRecords"`
}

// RawRecord keeps the record element as is.
type RawRecord struct {
	Inner []byte `xml:",innerxml"`
}

// Bytes returns the record as a standalone element.
func (r RawRecord) Bytes() []byte {
	b := make([]byte, 0, len(r.Inner)+17)
	b = append(b, "<record>"...)
	b = append(b, r.Inner...)
	b = append(b, "</record>"...)
	return b
}

// HasError returns true, if the response carries an OAI error, which is not
// "noRecordsMatch".
func (r *Response) HasError() bool {
	return r.Error.Code != "" && r.Error.Code != "noRecordsMatch"
}

// IsEmpty returns true, if the repository reported no matching records.
func (r *Response) IsEmpty() bool {
	return r.Error.Code == "noRecordsMatch"
}
