package convert

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/covpre/schema/crossref"
)

// TestNormalizeGolden converts testdata/<source>-<name>.input files and
// compares the result with the golden file next to it.
func TestNormalizeGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.input"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no test inputs found")
	}
	for _, path := range paths {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		t.Run(name, func(t *testing.T) {
			source, _, _ := strings.Cut(name, "-")
			n, ok := ForSource(source)
			if !ok {
				t.Fatalf("no normalizer for %s", source)
			}
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			h, err := n.Normalize(b)
			if err != nil {
				t.Fatal(err)
			}
			got, err := json.MarshalIndent(h, "", "    ")
			if err != nil {
				t.Fatal(err)
			}
			goldenfile := filepath.Join("testdata", name+".golden")
			want, err := os.ReadFile(goldenfile)
			if err != nil {
				if os.IsNotExist(err) {
					if err := os.WriteFile(goldenfile, got, 0644); err != nil {
						t.Fatal(err)
					}
					t.Logf("created golden file: %s", goldenfile)
					return
				}
				t.Fatal(err)
			}
			compareJSONWithDiff(t, name, got, want)
		})
	}
}

func TestNormalizeSkip(t *testing.T) {
	var cases = []struct {
		help   string
		source string
		input  string
		err    error
	}{
		{"crossref without title", "crossref",
			`{"DOI": "10.1101/1", "type": "posted-content", "posted": {"date-parts": [[2020, 3, 1]]}}`, ErrSkipNoTitle},
		{"crossref journal article", "crossref",
			`{"DOI": "10.1101/1", "type": "journal-article", "title": ["x"]}`, ErrSkipReleaseType},
		{"crossref incomplete posted date", "crossref",
			`{"DOI": "10.1101/1", "type": "posted-content", "title": ["x"], "posted": {"date-parts": [[2020, 3]]}}`, ErrSkipNoDate},
		{"crossref invalid posted date", "crossref",
			`{"DOI": "10.1101/1", "type": "posted-content", "title": ["x"], "posted": {"date-parts": [[2020, 2, 30]]}}`, ErrSkipNoDate},
		{"crossref invalid doi", "crossref",
			`{"DOI": "1101/1", "type": "posted-content", "title": ["x"], "posted": {"date-parts": [[2020, 3, 1]]}}`, ErrSkipNoDOI},
		{"datacite without doi", "datacite",
			`{"attributes": {"titles": [{"title": "x"}], "registered": "2020-03-01T00:00:00Z"}}`, ErrSkipNoDOI},
		{"datacite year only", "datacite",
			`{"attributes": {"doi": "10.5281/zenodo.1", "titles": [{"title": "x"}], "published": "2020"}}`, ErrSkipNoDate},
		{"arxiv without id", "arxiv",
			`{"title": "x", "published": "2020-03-01T00:00:00Z"}`, ErrSkipNoIdentifier},
		{"repec deleted", "repec",
			`<record><header status="deleted"><identifier>oai:RePEc:a:b:1</identifier></header></record>`, ErrSkipDeleted},
		{"repec without title", "repec",
			`<record><header><identifier>oai:RePEc:a:b:1</identifier><datestamp>2020-03-01</datestamp></header></record>`, ErrSkipNoTitle},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			n, _ := ForSource(c.source)
			_, err := n.Normalize([]byte(c.input))
			if !errors.Is(err, c.err) {
				t.Fatalf("got %v, want %v", err, c.err)
			}
			if !IsSkip(err) {
				t.Fatalf("expected skip error, got %T", err)
			}
		})
	}
}

func TestNormalizeInvalidInput(t *testing.T) {
	for _, name := range []string{"crossref", "datacite", "arxiv", "repec"} {
		n, ok := ForSource(name)
		if !ok {
			t.Fatalf("missing normalizer: %s", name)
		}
		if n.Name() != name {
			t.Fatalf("got %s, want %s", n.Name(), name)
		}
		_, err := n.Normalize([]byte("{<"))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if IsSkip(err) {
			t.Fatalf("%s: decode errors are no skip errors", name)
		}
	}
	if _, ok := ForSource("openalex"); ok {
		t.Fatalf("unexpected normalizer")
	}
}

func TestCrossrefNil(t *testing.T) {
	var w *crossref.Work
	if _, err := CrossrefWorkToPreprint(w); err == nil {
		t.Fatal("expected error")
	}
}

// Helper function to compare JSON with better diff output
func compareJSONWithDiff(t *testing.T, name string, got, want []byte) {
	var gotObj, wantObj interface{}
	if err := json.Unmarshal(got, &gotObj); err != nil {
		t.Fatalf("failed to unmarshal got JSON: %v", err)
	}
	if err := json.Unmarshal(want, &wantObj); err != nil {
		t.Fatalf("failed to unmarshal want JSON: %v", err)
	}
	if diff := cmp.Diff(wantObj, gotObj); diff != "" {
		t.Errorf("%s: JSON mismatch (-want +got):\n%s", name, diff)
	}
}
