// Package dedup collapses multiple versions and duplicate titles of a
// preprint into a single record.
//
// Among records sharing a key, the one with the earliest posted date wins.
// On equal dates, the lexicographically smallest identifier wins, then the
// record seen first. The survivors keep their input order, so the result
// does not depend on the order in which records were converted, as long as
// no two records share key, date and identifier.
package dedup

import (
	"regexp"
	"strings"

	"github.com/miku/covpre/schema/preprint"
)

var (
	// CrossrefVersion matches version suffixes like ".v2" or "/v2".
	CrossrefVersion = regexp.MustCompile(`[./]v\d+$`)
	// DataCiteVersion matches version suffixes like ".v3".
	DataCiteVersion = regexp.MustCompile(`\.v\d+$`)
	// ArxivVersion matches version suffixes like "v1".
	ArxivVersion = regexp.MustCompile(`v\d+$`)
)

// KeyFunc derives a grouping key from a record.
type KeyFunc func(r preprint.Record) string

// better reports whether a should replace b as the representative of a group.
func better(a, b preprint.Record) bool {
	if !a.PostedDate.Equal(b.PostedDate) {
		return a.PostedDate.Before(b.PostedDate)
	}
	return a.Identifier < b.Identifier
}

// By keeps one record per key. Records with an empty key are kept as is.
func By(records []preprint.Record, key KeyFunc) []preprint.Record {
	var (
		winner = make(map[string]int) // key to index into records
		keys   = make([]string, len(records))
	)
	for i, r := range records {
		k := key(r)
		keys[i] = k
		if k == "" {
			continue
		}
		j, ok := winner[k]
		if !ok || better(r, records[j]) {
			winner[k] = i
		}
	}
	result := make([]preprint.Record, 0, len(winner))
	for i, r := range records {
		if keys[i] != "" && winner[keys[i]] != i {
			continue
		}
		result = append(result, r)
	}
	return result
}

// StripVersion returns a key func for identifiers without version suffix. A
// nil pattern uses the identifier as is.
func StripVersion(pattern *regexp.Regexp) KeyFunc {
	return func(r preprint.Record) string {
		id := strings.TrimSpace(r.Identifier)
		if pattern != nil {
			id = pattern.ReplaceAllString(id, "")
		}
		if id == "" {
			return ""
		}
		return r.Source + "\t" + id
	}
}

// SourceTitle groups by source and title.
func SourceTitle(r preprint.Record) string {
	if r.Title == "" {
		return ""
	}
	return r.Source + "\t" + r.Title
}

// Versions keeps the earliest version of each identifier.
func Versions(records []preprint.Record, pattern *regexp.Regexp) []preprint.Record {
	return By(records, StripVersion(pattern))
}

// Titles keeps the earliest record of each source and title.
func Titles(records []preprint.Record) []preprint.Record {
	return By(records, SourceTitle)
}

// Batch runs both stages, versions first.
func Batch(records []preprint.Record, pattern *regexp.Regexp) []preprint.Record {
	return Titles(Versions(records, pattern))
}
