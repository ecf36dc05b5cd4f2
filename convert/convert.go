// Package convert maps raw source records to the common preprint shape.
package convert

import (
	"errors"
	"strings"
	"time"

	"github.com/miku/covpre/dateutil"
	"github.com/miku/covpre/normal"
	"github.com/miku/covpre/schema/preprint"
)

// Skip marks a record, that cannot be converted. Skipped records are
// dropped, they are no failure.
type Skip struct {
	err error
}

func (s Skip) Error() string {
	return s.err.Error()
}

var (
	ErrSkipNoTitle      = Skip{err: errors.New("no title")}
	ErrSkipNoDOI        = Skip{err: errors.New("no doi")}
	ErrSkipNoIdentifier = Skip{err: errors.New("no identifier")}
	ErrSkipNoDate       = Skip{err: errors.New("no parseable date")}
	ErrSkipReleaseType  = Skip{err: errors.New("not posted content")}
	ErrSkipDeleted      = Skip{err: errors.New("deleted record")}
)

// IsSkip returns true, if err marks a skipped record.
func IsSkip(err error) bool {
	var s Skip
	return errors.As(err, &s)
}

// Normalizer converts a single raw record, as found in a raw feed.
type Normalizer interface {
	// Name of the source family, e.g. "crossref".
	Name() string
	// Normalize converts the raw bytes of a record.
	Normalize(p []byte) (*preprint.Harvested, error)
}

// ForSource returns the normalizer for a source name.
func ForSource(name string) (Normalizer, bool) {
	switch name {
	case "crossref":
		return Crossref{}, true
	case "datacite":
		return DataCite{}, true
	case "arxiv":
		return Arxiv{}, true
	case "repec":
		return RePEc{}, true
	}
	return nil, false
}

func cleanTitle(title string) string {
	title = normal.Markup(title)
	if title == "" {
		return ""
	}
	// Remove common prefixes that do not belong in titles
	prefixes := []string{"Title:", "TITLE:"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(title, prefix) {
			title = strings.TrimSpace(strings.TrimPrefix(title, prefix))
		}
	}
	return title
}

// parseDate returns the calendar date of an ISO date or timestamp.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		// "2020" or "2020-03" are too coarse for a posted date
		return time.Time{}, false
	}
	t, err := dateutil.Parse(s)
	if err != nil {
		return time.Time{}, false
	}
	return preprint.Date(t), true
}

// firstDate returns the first parseable date.
func firstDate(vs ...string) (time.Time, bool) {
	for _, v := range vs {
		if t, ok := parseDate(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
