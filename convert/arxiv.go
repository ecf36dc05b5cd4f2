package convert

import (
	"fmt"

	"github.com/miku/covpre/normal"
	"github.com/miku/covpre/schema/arxiv"
	"github.com/miku/covpre/schema/preprint"
	"github.com/segmentio/encoding/json"
)

// Arxiv converts entries of the arXiv search API.
type Arxiv struct{}

func (Arxiv) Name() string { return "arxiv" }

func (Arxiv) Normalize(p []byte) (*preprint.Harvested, error) {
	var entry arxiv.Entry
	if err := json.Unmarshal(p, &entry); err != nil {
		return nil, fmt.Errorf("arxiv: %w", err)
	}
	return ArxivEntryToPreprint(&entry)
}

// ArxivEntryToPreprint converts a single entry. The identifier is stored
// without version, the posted date is the date of the first version.
func ArxivEntryToPreprint(entry *arxiv.Entry) (*preprint.Harvested, error) {
	if entry == nil {
		return nil, fmt.Errorf("arxiv entry cannot be nil")
	}
	id := entry.BaseID()
	if id == "" {
		return nil, ErrSkipNoIdentifier
	}
	title := cleanTitle(entry.Title)
	if title == "" {
		return nil, ErrSkipNoTitle
	}
	posted, ok := firstDate(entry.Published, entry.Updated)
	if !ok {
		return nil, ErrSkipNoDate
	}
	h := preprint.Harvested{
		Record: preprint.Record{
			Identifier:     id,
			IdentifierType: preprint.ArxivID,
			PostedDate:     posted,
			Title:          title,
			Abstract:       normal.Markup(entry.Summary),
		},
	}
	return &h, nil
}
