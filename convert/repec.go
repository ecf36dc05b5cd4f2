package convert

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/miku/covpre/normal"
	"github.com/miku/covpre/schema/oai"
	"github.com/miku/covpre/schema/preprint"
)

// RePEc converts OAI-PMH records in oai_dc format from the RePEc OAI gateway.
type RePEc struct{}

func (RePEc) Name() string { return "repec" }

func (RePEc) Normalize(p []byte) (*preprint.Harvested, error) {
	var record oai.Record
	if err := xml.Unmarshal(p, &record); err != nil {
		return nil, fmt.Errorf("repec: %w", err)
	}
	return OaiRecordToPreprint(&record)
}

// OaiRecordToPreprint converts an OAI record. The OAI datestamp is used as
// posted date, the handle is the OAI identifier without scheme.
func OaiRecordToPreprint(record *oai.Record) (*preprint.Harvested, error) {
	if record == nil {
		return nil, fmt.Errorf("oai record cannot be nil")
	}
	if record.IsDeleted() {
		return nil, ErrSkipDeleted
	}
	handle := record.Handle()
	if handle == "" {
		return nil, ErrSkipNoIdentifier
	}
	dc := record.Metadata.Dc
	title := cleanTitle(dc.Title)
	if title == "" {
		return nil, ErrSkipNoTitle
	}
	posted, ok := parseDate(record.Header.Datestamp)
	if !ok {
		if posted, ok = firstDate(dc.Date...); !ok {
			return nil, ErrSkipNoDate
		}
	}
	var abstract string
	for _, desc := range dc.Description {
		if abstract = normal.Markup(desc); abstract != "" {
			break
		}
	}
	var publisher string
	if len(dc.Publisher) > 0 {
		publisher = strings.TrimSpace(dc.Publisher[0])
	}
	h := preprint.Harvested{
		Record: preprint.Record{
			Identifier:     handle,
			IdentifierType: preprint.RePEcHandle,
			PostedDate:     posted,
			Title:          title,
			Abstract:       abstract,
		},
		Origin: preprint.Origin{
			Handle:    handle,
			Publisher: publisher,
		},
	}
	return &h, nil
}
