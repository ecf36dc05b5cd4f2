// Package dataset merges per source batches into the final table and reads
// and writes it as CSV, with a small JSON metadata sidecar.
package dataset

import (
	"sort"
	"time"

	"github.com/miku/covpre/dedup"
	"github.com/miku/covpre/normal"
	"github.com/miku/covpre/schema/preprint"
)

// File names of the exported artifacts.
const (
	CSVName      = "covid19_preprints.csv"
	MetadataName = "covid19_preprints_metadata.json"
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the date of t lies within the window.
func (w Window) Contains(t time.Time) bool {
	d := preprint.Date(t)
	return !d.Before(preprint.Date(w.Start)) && !d.After(preprint.Date(w.End))
}

// Merge combines batches into a single, sorted table. Records without date
// or outside the window are dropped, abstracts are cleaned from markup and
// duplicate titles per source are removed across batches.
func Merge(w Window, batches ...[]preprint.Record) []preprint.Record {
	var result []preprint.Record
	for _, batch := range batches {
		for _, r := range batch {
			if !r.HasDate() || !w.Contains(r.PostedDate) {
				continue
			}
			r.PostedDate = preprint.Date(r.PostedDate)
			r.Title = normal.Whitespace(r.Title)
			r.Abstract = normal.Residual(r.Abstract)
			result = append(result, r)
		}
	}
	result = dedup.Titles(result)
	Sort(result)
	return result
}

// Sort orders records by posted date, source and identifier.
func Sort(records []preprint.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.PostedDate.Equal(b.PostedDate) {
			return a.PostedDate.Before(b.PostedDate)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Identifier < b.Identifier
	})
}
