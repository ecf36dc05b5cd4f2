package feeds

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Default API endpoints.
const (
	CrossrefEndpoint = "https://api.crossref.org/works"
	DataCiteEndpoint = "https://api.datacite.org/dois"
	ArxivEndpoint    = "http://export.arxiv.org/api/query"
	RePEcEndpoint    = "https://oai.repec.org/"
)

// Names of the available harvesters, in harvest order.
var Names = []string{"crossref", "datacite", "arxiv", "repec"}

// Options for all harvesters. Zero values mean defaults.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string
	// MaxRetries is the number of retries of undecodable responses.
	MaxRetries int
	// AcceptableMissRatio is the share of announced records that may be
	// missing after a harvest, zero disables the check.
	AcceptableMissRatio float64
	// CrossrefApiEmail is sent with every request, as suggested by the
	// Crossref REST API.
	CrossrefApiEmail string
	CrossrefEndpoint string
	CrossrefRows     int
	DataCiteEndpoint string
	DataCitePageSize int
	ArxivEndpoint    string
	ArxivPageSize    int
	ArxivTerms       []string
	// ArxivInterval is the minimum delay between two arXiv requests.
	ArxivInterval time.Duration
	RePEcEndpoint string
	RePEcSet      string
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// New returns the harvester for a source name.
func New(name string, client Doer, opts Options) (Harvester, error) {
	switch name {
	case "crossref":
		return &CrossrefHarvester{
			Client:              client,
			ApiEndpoint:         orDefault(opts.CrossrefEndpoint, CrossrefEndpoint),
			ApiFilter:           "posted",
			WorkType:            "posted-content",
			ApiEmail:            opts.CrossrefApiEmail,
			Rows:                opts.CrossrefRows,
			UserAgent:           opts.UserAgent,
			MaxRetries:          opts.MaxRetries,
			AcceptableMissRatio: opts.AcceptableMissRatio,
		}, nil
	case "datacite":
		return &DataCiteHarvester{
			Client:              client,
			ApiEndpoint:         orDefault(opts.DataCiteEndpoint, DataCiteEndpoint),
			Query:               "types.resourceTypeGeneral:Preprint",
			ResourceTypeID:      "preprint",
			PageSize:            opts.DataCitePageSize,
			UserAgent:           opts.UserAgent,
			MaxRetries:          opts.MaxRetries,
			AcceptableMissRatio: opts.AcceptableMissRatio,
		}, nil
	case "arxiv":
		interval := opts.ArxivInterval
		if interval == 0 {
			interval = DefaultArxivInterval
		}
		return &ArxivHarvester{
			Client:              client,
			ApiEndpoint:         orDefault(opts.ArxivEndpoint, ArxivEndpoint),
			Terms:               opts.ArxivTerms,
			PageSize:            opts.ArxivPageSize,
			Limiter:             rate.NewLimiter(rate.Every(interval), 1),
			UserAgent:           opts.UserAgent,
			MaxRetries:          opts.MaxRetries,
			AcceptableMissRatio: opts.AcceptableMissRatio,
		}, nil
	case "repec":
		return &RePEcHarvester{
			Client:         client,
			ApiEndpoint:    orDefault(opts.RePEcEndpoint, RePEcEndpoint),
			MetadataPrefix: "oai_dc",
			Set:            opts.RePEcSet,
			UserAgent:      opts.UserAgent,
			MaxRetries:     opts.MaxRetries,
		}, nil
	}
	return nil, fmt.Errorf("unknown source: %s", name)
}
