package dataset

import (
	"os"
	"time"

	"github.com/miku/covpre/atomicfile"
	"github.com/miku/covpre/schema/preprint"
	"github.com/segmentio/encoding/json"
)

// Metadata describes a release of the dataset.
type Metadata struct {
	ReleaseDate string `json:"release_date"`
	SampleDate  string `json:"sample_date"`
	URL         string `json:"url"`
}

// NewMetadata returns metadata for a release.
func NewMetadata(release, sample time.Time, url string) Metadata {
	return Metadata{
		ReleaseDate: release.Format(preprint.DateLayout),
		SampleDate:  sample.Format(preprint.DateLayout),
		URL:         url,
	}
}

// WriteMetadata writes the metadata sidecar atomically.
func WriteMetadata(name string, m Metadata) error {
	b, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	f, err := atomicfile.New(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}

// ReadMetadata reads a metadata sidecar.
func ReadMetadata(name string) (Metadata, error) {
	var m Metadata
	b, err := os.ReadFile(name)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}
