package convert

import (
	"fmt"
	"strings"

	"github.com/miku/covpre/normal"
	"github.com/miku/covpre/schema/crossref"
	"github.com/miku/covpre/schema/preprint"
	"github.com/segmentio/encoding/json"
)

// Crossref converts works of type posted-content.
type Crossref struct{}

func (Crossref) Name() string { return "crossref" }

func (Crossref) Normalize(p []byte) (*preprint.Harvested, error) {
	var work crossref.Work
	if err := json.Unmarshal(p, &work); err != nil {
		return nil, fmt.Errorf("crossref: %w", err)
	}
	return CrossrefWorkToPreprint(&work)
}

// CrossrefWorkToPreprint converts a crossref work document. The posted date
// must be a complete year-month-day triple.
func CrossrefWorkToPreprint(work *crossref.Work) (*preprint.Harvested, error) {
	if work == nil {
		return nil, fmt.Errorf("crossref work cannot be nil")
	}
	if work.Type != "" && work.Type != "posted-content" {
		return nil, ErrSkipReleaseType
	}
	if len(work.Title) == 0 {
		return nil, ErrSkipNoTitle
	}
	title := cleanTitle(work.Title[0])
	if title == "" {
		return nil, ErrSkipNoTitle
	}
	doi := cleanDOI(work.DOI)
	if doi == "" {
		return nil, ErrSkipNoDOI
	}
	y, m, d, ok := work.Posted.Triple()
	if !ok {
		return nil, ErrSkipNoDate
	}
	posted, ok := preprint.NewDate(y, m, d)
	if !ok {
		return nil, ErrSkipNoDate
	}
	h := preprint.Harvested{
		Record: preprint.Record{
			Identifier:     doi,
			IdentifierType: preprint.DOI,
			PostedDate:     posted,
			Title:          title,
			Abstract:       normal.Markup(work.Abstract),
		},
		Origin: preprint.Origin{
			Institution: work.InstitutionName(),
			Publisher:   strings.TrimSpace(work.Publisher),
			GroupTitle:  strings.TrimSpace(work.GroupTitle),
		},
	}
	return &h, nil
}
