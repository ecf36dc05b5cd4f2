package dedup

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/covpre/schema/preprint"
)

func rec(source, id, date, title string) preprint.Record {
	t, err := time.Parse(preprint.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return preprint.Record{
		Source:         source,
		Identifier:     id,
		IdentifierType: preprint.DOI,
		PostedDate:     t,
		Title:          title,
	}
}

func TestVersions(t *testing.T) {
	var cases = []struct {
		help    string
		pattern *regexp.Regexp
		input   []preprint.Record
		result  []preprint.Record
	}{
		{
			help:    "empty",
			pattern: DataCiteVersion,
		},
		{
			help:    "earlier version wins",
			pattern: DataCiteVersion,
			input: []preprint.Record{
				rec("Figshare", "10.1/x.v2", "2020-03-05", "b"),
				rec("Figshare", "10.1/x.v1", "2020-03-01", "a"),
			},
			result: []preprint.Record{
				rec("Figshare", "10.1/x.v1", "2020-03-01", "a"),
			},
		},
		{
			help:    "crossref slash version",
			pattern: CrossrefVersion,
			input: []preprint.Record{
				rec("SSRN", "10.1/x/v1", "2020-03-01", "a"),
				rec("SSRN", "10.1/x/v2", "2020-04-01", "b"),
				rec("SSRN", "10.1/y", "2020-04-01", "c"),
			},
			result: []preprint.Record{
				rec("SSRN", "10.1/x/v1", "2020-03-01", "a"),
				rec("SSRN", "10.1/y", "2020-04-01", "c"),
			},
		},
		{
			help:    "same date, smaller identifier wins",
			pattern: ArxivVersion,
			input: []preprint.Record{
				rec("arXiv", "2003.1v2", "2020-03-01", "b"),
				rec("arXiv", "2003.1v1", "2020-03-01", "a"),
			},
			result: []preprint.Record{
				rec("arXiv", "2003.1v1", "2020-03-01", "a"),
			},
		},
		{
			help:    "different sources are kept",
			pattern: DataCiteVersion,
			input: []preprint.Record{
				rec("Zenodo", "10.1/x.v1", "2020-03-01", "a"),
				rec("Figshare", "10.1/x.v2", "2020-03-05", "a"),
			},
			result: []preprint.Record{
				rec("Zenodo", "10.1/x.v1", "2020-03-01", "a"),
				rec("Figshare", "10.1/x.v2", "2020-03-05", "a"),
			},
		},
		{
			help:    "no pattern",
			pattern: nil,
			input: []preprint.Record{
				rec("NBER", "RePEc:nbr:nberwo:1v1", "2020-03-01", "a"),
				rec("NBER", "RePEc:nbr:nberwo:1v2", "2020-03-01", "b"),
			},
			result: []preprint.Record{
				rec("NBER", "RePEc:nbr:nberwo:1v1", "2020-03-01", "a"),
				rec("NBER", "RePEc:nbr:nberwo:1v2", "2020-03-01", "b"),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			result := Versions(c.input, c.pattern)
			if diff := cmp.Diff(c.result, result); len(c.result) > 0 && diff != "" {
				t.Fatalf("diff (-want +got):\n%s", diff)
			}
			if len(c.result) == 0 && len(result) != 0 {
				t.Fatalf("got %v, want empty", result)
			}
		})
	}
}

func TestTitles(t *testing.T) {
	input := []preprint.Record{
		rec("medRxiv", "10.1101/2", "2020-04-01", "COVID-19 in Italy"),
		rec("medRxiv", "10.1101/1", "2020-03-01", "COVID-19 in Italy"),
		rec("bioRxiv", "10.1101/3", "2020-05-01", "COVID-19 in Italy"),
		rec("medRxiv", "10.1101/4", "2020-03-01", ""),
		rec("medRxiv", "10.1101/5", "2020-03-01", ""),
	}
	want := []preprint.Record{
		rec("medRxiv", "10.1101/1", "2020-03-01", "COVID-19 in Italy"),
		rec("bioRxiv", "10.1101/3", "2020-05-01", "COVID-19 in Italy"),
		rec("medRxiv", "10.1101/4", "2020-03-01", ""),
		rec("medRxiv", "10.1101/5", "2020-03-01", ""),
	}
	if diff := cmp.Diff(want, Titles(input)); diff != "" {
		t.Fatalf("diff (-want +got):\n%s", diff)
	}
}

// TestBatchOrderIndependent checks that any permutation of the input yields
// the same set of survivors.
func TestBatchOrderIndependent(t *testing.T) {
	input := []preprint.Record{
		rec("Zenodo", "10.5281/zenodo.1.v1", "2020-03-02", "Distancing"),
		rec("Zenodo", "10.5281/zenodo.1.v2", "2020-03-01", "Distancing v2"),
		rec("Zenodo", "10.5281/zenodo.2", "2020-03-01", "Distancing"),
		rec("Zenodo", "10.5281/zenodo.3", "2020-03-01", "Masks"),
		rec("Zenodo", "10.5281/zenodo.4", "2020-03-01", "Masks"),
	}
	want := make(map[string]bool)
	for _, r := range Batch(input, DataCiteVersion) {
		want[r.Identifier] = true
	}
	expected := map[string]bool{
		"10.5281/zenodo.1.v2": true,
		"10.5281/zenodo.2":    true,
		"10.5281/zenodo.3":    true,
	}
	if diff := cmp.Diff(expected, want); diff != "" {
		t.Fatalf("diff (-want +got):\n%s", diff)
	}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]preprint.Record(nil), input...)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := make(map[string]bool)
		for _, r := range Batch(shuffled, DataCiteVersion) {
			got[r.Identifier] = true
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("permutation %d: diff (-want +got):\n%s", i, diff)
		}
	}
}
