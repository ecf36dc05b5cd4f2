package classify

import (
	"strings"
	"testing"

	"github.com/miku/covpre/schema/preprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	var cases = []struct {
		source string
		origin preprint.Origin
		label  string
		ok     bool
	}{
		{"crossref", preprint.Origin{Publisher: "MDPI AG"}, "Preprints.org", true},
		{"crossref", preprint.Origin{Institution: " medRxiv ", Publisher: "Cold Spring Harbor Laboratory"}, "medRxiv", true},
		{"crossref", preprint.Origin{Publisher: "Cold Spring Harbor Laboratory"}, "bioRxiv", true},
		{"crossref", preprint.Origin{Publisher: "Center for Open Science", GroupTitle: "PsyArXiv"}, "PsyArXiv", true},
		{"crossref", preprint.Origin{Publisher: "Center for Open Science", GroupTitle: "  "}, "", false},
		{"crossref", preprint.Origin{Publisher: "Elsevier BV"}, "SSRN", true},
		{"crossref", preprint.Origin{Publisher: "Some Journal House"}, "", false},
		{"crossref", preprint.Origin{}, "", false},
		{"datacite", preprint.Origin{Client: "cern.zenodo"}, "Zenodo", true},
		{"datacite", preprint.Origin{Client: "figshare.ars"}, "Figshare", true},
		{"datacite", preprint.Origin{Client: "tib.unknown"}, "", false},
		{"arxiv", preprint.Origin{}, "arXiv", true},
		{"repec", preprint.Origin{Handle: "RePEc:nbr:nberwo:26867"}, "NBER", true},
		{"repec", preprint.Origin{Handle: "RePEc:iza:izadps:dp13000"}, "IZA", true},
		{"repec", preprint.Origin{Handle: "RePEc:pra:mprapa:99317"}, "RePEc", true},
	}
	tables := Default()
	for _, c := range cases {
		cl, err := tables.Classifier(c.source)
		require.NoError(t, err)
		label, ok := cl.Classify(c.origin)
		assert.Equal(t, c.ok, ok, "%s %+v", c.source, c.origin)
		assert.Equal(t, c.label, label, "%s %+v", c.source, c.origin)
	}
}

func TestFirstMatchWins(t *testing.T) {
	rules := `
crossref:
  - label: A
    publisher: P
    institution: I
  - label: B
    publisher: P
  - label: C
`
	tables, err := Load(strings.NewReader(rules))
	require.NoError(t, err)
	cl, err := tables.Classifier("crossref")
	require.NoError(t, err)
	assert.Equal(t, "crossref", cl.Source())

	label, _ := cl.Classify(preprint.Origin{Publisher: "P", Institution: "I"})
	assert.Equal(t, "A", label)
	label, _ = cl.Classify(preprint.Origin{Publisher: "P"})
	assert.Equal(t, "B", label)
	label, _ = cl.Classify(preprint.Origin{Publisher: "Q"})
	assert.Equal(t, "C", label)
}

func TestLoadInvalid(t *testing.T) {
	var cases = []string{
		"crossref:\n  - publisher: P\n",
		"crossref:\n  - label: A\n    label_from: group_title\n",
		"crossref:\n  - label_from: title\n",
		"crossref: [",
	}
	for _, c := range cases {
		_, err := Load(strings.NewReader(c))
		assert.Error(t, err, c)
	}
}

func TestMissingSource(t *testing.T) {
	_, err := Default().Classifier("openalex")
	assert.Error(t, err)
}
