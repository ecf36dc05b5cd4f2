package convert

import (
	"fmt"
	"strings"

	"github.com/miku/covpre/normal"
	"github.com/miku/covpre/schema/datacite"
	"github.com/miku/covpre/schema/preprint"
	"github.com/segmentio/encoding/json"
)

// DataCite converts DOI records of the DataCite REST API.
type DataCite struct{}

func (DataCite) Name() string { return "datacite" }

func (DataCite) Normalize(p []byte) (*preprint.Harvested, error) {
	var doc datacite.Document
	if err := json.Unmarshal(p, &doc); err != nil {
		return nil, fmt.Errorf("datacite: %w", err)
	}
	return DataCiteToPreprint(&doc)
}

// DataCiteToPreprint converts a DataCite document. The registration date is
// used as posted date.
func DataCiteToPreprint(doc *datacite.Document) (*preprint.Harvested, error) {
	if doc == nil {
		return nil, fmt.Errorf("datacite document cannot be nil")
	}
	doi := cleanDOI(doc.Attributes.DOI)
	if doi == "" {
		return nil, ErrSkipNoDOI
	}
	var title string
	for _, t := range doc.Attributes.Titles {
		// subtitles and translated titles come after the main title
		if t.TitleType != "" {
			continue
		}
		if title = cleanTitle(t.Title); title != "" {
			break
		}
	}
	if title == "" && len(doc.Attributes.Titles) > 0 {
		title = cleanTitle(doc.Attributes.Titles[0].Title)
	}
	if title == "" {
		return nil, ErrSkipNoTitle
	}
	attr := doc.Attributes
	posted, ok := firstDate(attr.Registered, attr.Created, attr.Published)
	if !ok {
		return nil, ErrSkipNoDate
	}
	h := preprint.Harvested{
		Record: preprint.Record{
			Identifier:     doi,
			IdentifierType: preprint.DOI,
			PostedDate:     posted,
			Title:          title,
			Abstract:       normal.Markup(doc.Abstract()),
		},
		Origin: preprint.Origin{
			Client:    strings.TrimSpace(doc.ClientID()),
			Publisher: strings.TrimSpace(doc.PublisherName()),
		},
	}
	return &h, nil
}
