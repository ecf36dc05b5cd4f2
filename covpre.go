// Package covpre collects metadata about COVID-19 related preprints from
// Crossref, DataCite, arXiv and RePEc into a single flat dataset.
package covpre

const (
	// AppName is used for cache and data directories.
	AppName = "covpre"
	// Version of the toolkit.
	Version = "0.3.1"
)
