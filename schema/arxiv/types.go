package arxiv

import (
	"regexp"
	"strings"
)

// absPrefixes precede the identifier in the id of an Atom entry.
var absPrefixes = []string{
	"http://arxiv.org/abs/",
	"https://arxiv.org/abs/",
	"http://export.arxiv.org/abs/",
}

var versionPattern = regexp.MustCompile(`v[0-9]+$`)

// Entry is a single result of the arXiv search API, reduced from the Atom
// feed to the fields we keep in the raw feed.
type Entry struct {
	ID         string   `json:"id"`        // http://arxiv.org/abs/2003.00001v2
	Title      string   `json:"title"`     // Novel coronavirus ...
	Summary    string   `json:"summary"`   // We show that ...
	Published  string   `json:"published"` // 2020-03-01T12:00:00Z, first version
	Updated    string   `json:"updated"`
	DOI        string   `json:"doi,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Authors    []string `json:"authors,omitempty"`
}

// RawID returns the identifier with version, e.g. 2003.00001v2.
func (e *Entry) RawID() string {
	for _, p := range absPrefixes {
		if strings.HasPrefix(e.ID, p) {
			return strings.TrimPrefix(e.ID, p)
		}
	}
	return e.ID
}

// BaseID returns identifier without version, e.g. 2003.00001.
func (e *Entry) BaseID() string {
	return versionPattern.ReplaceAllString(e.RawID(), "")
}
