package pipeline

import (
	"bufio"
	"fmt"
	"regexp"

	"github.com/miku/covpre/classify"
	"github.com/miku/covpre/convert"
	"github.com/miku/covpre/dedup"
	"github.com/miku/covpre/feeds"
	"github.com/miku/covpre/pproc/record"
)

// Source bundles everything needed to turn one upstream source into a batch
// of classified records.
type Source struct {
	Name           string
	Harvester      feeds.Harvester
	Normalizer     convert.Normalizer
	Classifier     *classify.Classifier
	VersionPattern *regexp.Regexp  // nil keeps identifiers as is
	Split          bufio.SplitFunc // nil splits lines
	Ext            string          // raw feed file extension
}

// NewSource sets up a known source with default settings.
func NewSource(name string, client feeds.Doer, opts feeds.Options, tables classify.Tables) (Source, error) {
	h, err := feeds.New(name, client, opts)
	if err != nil {
		return Source{}, err
	}
	n, ok := convert.ForSource(name)
	if !ok {
		return Source{}, fmt.Errorf("no normalizer for %s", name)
	}
	c, err := tables.Classifier(name)
	if err != nil {
		return Source{}, err
	}
	s := Source{
		Name:       name,
		Harvester:  h,
		Normalizer: n,
		Classifier: c,
		Ext:        "jsonl",
	}
	switch name {
	case "crossref":
		s.VersionPattern = dedup.CrossrefVersion
	case "datacite":
		s.VersionPattern = dedup.DataCiteVersion
	case "arxiv":
		s.VersionPattern = dedup.ArxivVersion
	case "repec":
		s.Split = record.TagSplitter("record")
		s.Ext = "xml"
	}
	return s, nil
}
