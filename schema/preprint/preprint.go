// Package preprint contains the common record shape all sources are
// normalized into.
package preprint

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of posted dates in exported data.
const DateLayout = "2006-01-02"

// IdentifierType names the kind of identifier of a record.
type IdentifierType string

const (
	DOI         IdentifierType = "DOI"
	ArxivID     IdentifierType = "arXiv ID"
	RePEcHandle IdentifierType = "RePEc handle"
)

// ParseIdentifierType parses the exported form of an identifier type.
func ParseIdentifierType(s string) (IdentifierType, error) {
	switch t := IdentifierType(strings.TrimSpace(s)); t {
	case DOI, ArxivID, RePEcHandle:
		return t, nil
	default:
		return "", fmt.Errorf("unknown identifier type: %q", s)
	}
}

// Record is a single preprint. An empty abstract means no abstract.
type Record struct {
	Source         string         `json:"source"`
	Identifier     string         `json:"identifier"`
	IdentifierType IdentifierType `json:"identifier_type"`
	PostedDate     time.Time      `json:"posted_date"`
	Title          string         `json:"title"`
	Abstract       string         `json:"abstract,omitempty"`
}

// Text returns the title and abstract, for matching.
func (r Record) Text() string {
	if r.Abstract == "" {
		return r.Title
	}
	return r.Title + "\n" + r.Abstract
}

// HasDate is false, if the record lost its posted date, e.g. after a failed
// date lookup.
func (r Record) HasDate() bool {
	return !r.PostedDate.IsZero()
}

// Origin groups the source specific fields a repository name is derived
// from. Not every source fills every field.
type Origin struct {
	Institution string `json:"institution,omitempty"` // crossref
	Publisher   string `json:"publisher,omitempty"`   // crossref, datacite
	GroupTitle  string `json:"group_title,omitempty"` // crossref
	Client      string `json:"client,omitempty"`      // datacite
	Handle      string `json:"handle,omitempty"`      // repec
}

// Harvested is a normalized record, which has not been classified yet.
type Harvested struct {
	Record
	Origin Origin `json:"origin"`
}

// Date truncates a time to a calendar date in UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate returns a calendar date, or false, if year, month and day do not
// form a valid date.
func NewDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
